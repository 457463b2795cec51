package port

// Generator invokes the external generative model with an assembled context.
type Generator interface {
	// Generate produces code text from the assembled system context and
	// the user prompt.
	Generate(systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
