package domain

// Pattern is a stored design-pattern record: a curated snippet of UI code
// with metadata and the embedding computed from its content.
type Pattern struct {
	ID        string
	Name      string
	Category  string
	Tags      []string
	Content   string
	Embedding []float32
}

// RetrievalResult is produced fresh per query and never persisted.
type RetrievalResult struct {
	PatternID string   `json:"id"`
	Score     float64  `json:"score"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags,omitempty"`
	Content   string   `json:"content"`
}

// AssembledContext is the bounded prompt context handed to the generator.
// PatternIDs lists, in rank order, the patterns whose content actually made
// it into the context after budget trimming.
type AssembledContext struct {
	System       string   `json:"system"`
	PatternIDs   []string `json:"pattern_ids"`
	BudgetTokens int      `json:"budget_tokens"`
	UsedTokens   int      `json:"used_tokens"`
}

// GenerationOutcome is the result of a full generate call.
// PatternsUsed always equals len(PatternIDs); it reflects the patterns that
// were actually presented to the model, not the requested top-k.
type GenerationOutcome struct {
	Output       string   `json:"output"`
	PatternsUsed int      `json:"patterns_used"`
	PatternIDs   []string `json:"pattern_ids"`
}
