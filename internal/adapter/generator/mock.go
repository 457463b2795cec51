package generator

import (
	"errors"
	"fmt"
)

// MockGenerator returns a canned response without calling any model. When
// output is empty it echoes the prompts, which lets tests assert what the
// generator was actually shown.
type MockGenerator struct {
	output string
	err    error
}

func NewMockGenerator(output string) *MockGenerator {
	return &MockGenerator{output: output}
}

// NewFailingGenerator always fails with the given message.
func NewFailingGenerator(msg string) *MockGenerator {
	return &MockGenerator{err: errors.New(msg)}
}

func (g *MockGenerator) Generate(systemPrompt, userPrompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if g.output != "" {
		return g.output, nil
	}
	return fmt.Sprintf("// system:\n%s\n// prompt:\n%s\n", systemPrompt, userPrompt), nil
}

func (g *MockGenerator) ModelName() string {
	return "mock"
}
