package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"delm/internal/adapter/analyzer"
	"delm/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// templateFiles maps each generation type to its instructional template.
// Adding a generation type means adding a constant, a template file, and an
// entry here; ParseGenerationType keeps unknown strings out.
var templateFiles = map[domain.GenerationType]string{
	domain.GenerateComponent: "templates/component_prompt.txt",
	domain.GenerateStyles:    "templates/styles_prompt.txt",
	domain.GenerateLayout:    "templates/layout_prompt.txt",
}

// Assembler turns ranked retrieval results into a bounded prompt context.
// The token budget applies to retrieved pattern content: the highest-ranked
// prefix that fits is kept and everything from the first over-budget pattern
// down is dropped whole. A pattern is never truncated mid-snippet.
type Assembler struct {
	tokenizer *analyzer.Tokenizer
	budget    int
	templates map[domain.GenerationType]*template.Template
}

// NewAssembler parses all prompt templates up front so a malformed template
// fails at startup, not per request.
func NewAssembler(tokenizer *analyzer.Tokenizer, budget int) (*Assembler, error) {
	templates := make(map[domain.GenerationType]*template.Template, len(templateFiles))
	for genType, file := range templateFiles {
		content, err := promptTemplates.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("template not found for %s: %w", genType, err)
		}
		tmpl, err := template.New(string(genType)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", genType, err)
		}
		templates[genType] = tmpl
	}
	return &Assembler{
		tokenizer: tokenizer,
		budget:    budget,
		templates: templates,
	}, nil
}

type promptData struct {
	Examples string
	Count    int
}

// Assemble renders the instructional template for genType around the
// retrieved examples, in ranking order.
func (a *Assembler) Assemble(genType domain.GenerationType, results []domain.RetrievalResult) (domain.AssembledContext, error) {
	tmpl, ok := a.templates[genType]
	if !ok {
		return domain.AssembledContext{}, fmt.Errorf("%w: %q", domain.ErrInvalidGenerationType, genType)
	}

	selected, usedTokens := a.fitBudget(results)

	var examples strings.Builder
	patternIDs := make([]string, 0, len(selected))
	for i, r := range selected {
		examples.WriteString(formatExample(i+1, r))
		patternIDs = append(patternIDs, r.PatternID)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		Examples: examples.String(),
		Count:    len(selected),
	})
	if err != nil {
		return domain.AssembledContext{}, fmt.Errorf("failed to render %s template: %w", genType, err)
	}

	return domain.AssembledContext{
		System:       buf.String(),
		PatternIDs:   patternIDs,
		BudgetTokens: a.budget,
		UsedTokens:   usedTokens,
	}, nil
}

// fitBudget keeps the longest ranked prefix whose combined content fits the
// token budget. The first pattern that would exceed the budget and every
// lower-ranked pattern after it are dropped.
func (a *Assembler) fitBudget(results []domain.RetrievalResult) ([]domain.RetrievalResult, int) {
	selected := make([]domain.RetrievalResult, 0, len(results))
	used := 0
	for _, r := range results {
		tokens := a.tokenizer.CountTokens(r.Content)
		if tokens == 0 {
			tokens = 1
		}
		if used+tokens > a.budget {
			break
		}
		selected = append(selected, r)
		used += tokens
	}
	return selected, used
}

// formatExample delimits and labels one retrieved pattern so generated output
// can be attributed back to specific pattern ids.
func formatExample(rank int, r domain.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### [%d] %s: %s (category: %s, relevance: %.2f)\n", rank, r.PatternID, r.Name, r.Category, r.Score))
	if len(r.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(r.Tags, ", ")))
	}
	sb.WriteString("```\n")
	sb.WriteString(r.Content)
	sb.WriteString("\n```\n\n")
	return sb.String()
}
