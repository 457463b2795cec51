package usecase

import (
	"fmt"
	"strings"

	"delm/internal/adapter/cache"
	"delm/internal/domain"
	"delm/internal/port"
)

// Pipeline composes the embedder, pattern store, retriever, assembler, and
// generator behind the four externally visible operations. The pipeline
// itself is stateless per call; all state lives in the pattern store. One
// pipeline is constructed during process startup and shared by every request
// for the process lifetime.
type Pipeline struct {
	categories *domain.CategorySet
	embedder   port.Embedder
	store      port.PatternStore
	retriever  port.Retriever
	assembler  port.Assembler
	generator  port.Generator
	cache      *cache.QueryCache // nil when result caching is disabled
	topK       int
	ready      bool
}

// NewPipeline wires the pipeline. It fails fast on a missing collaborator so
// a half-constructed pipeline can never be published.
func NewPipeline(
	categories *domain.CategorySet,
	embedder port.Embedder,
	store port.PatternStore,
	retriever port.Retriever,
	assembler port.Assembler,
	generator port.Generator,
	qcache *cache.QueryCache,
	topK int,
) (*Pipeline, error) {
	if categories == nil || embedder == nil || store == nil || retriever == nil || assembler == nil || generator == nil {
		return nil, fmt.Errorf("pipeline: missing collaborator")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("pipeline: default top_k must be positive, got %d", topK)
	}
	return &Pipeline{
		categories: categories,
		embedder:   embedder,
		store:      store,
		retriever:  retriever,
		assembler:  assembler,
		generator:  generator,
		cache:      qcache,
		topK:       topK,
		ready:      true,
	}, nil
}

// Ready reports whether initialization has completed. A nil or zero-value
// pipeline is not ready; every operation on it fails with ErrNotReady
// instead of silently returning empty results.
func (p *Pipeline) Ready() bool {
	return p != nil && p.ready
}

func (p *Pipeline) ensureReady() error {
	if !p.Ready() {
		return domain.ErrNotReady
	}
	return nil
}

// Generate retrieves relevant patterns for the prompt, assembles the bounded
// context for generationType, and dispatches to the generative model.
// PatternIDs in the outcome are the patterns actually placed into context
// after budget trimming, never the requested top-k.
func (p *Pipeline) Generate(prompt, generationType, category string) (domain.GenerationOutcome, error) {
	if err := p.ensureReady(); err != nil {
		return domain.GenerationOutcome{}, err
	}

	genType, err := domain.ParseGenerationType(generationType)
	if err != nil {
		return domain.GenerationOutcome{}, err
	}
	if strings.TrimSpace(prompt) == "" {
		return domain.GenerationOutcome{}, fmt.Errorf("%w: prompt", domain.ErrEmptyText)
	}

	results, err := p.retriever.Retrieve(prompt, category, p.topK)
	if err != nil {
		return domain.GenerationOutcome{}, err
	}

	assembled, err := p.assembler.Assemble(genType, results)
	if err != nil {
		return domain.GenerationOutcome{}, err
	}

	output, err := p.generator.Generate(assembled.System, prompt)
	if err != nil {
		return domain.GenerationOutcome{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	return domain.GenerationOutcome{
		Output:       output,
		PatternsUsed: len(assembled.PatternIDs),
		PatternIDs:   assembled.PatternIDs,
	}, nil
}

// AddPattern validates inputs, embeds content, and inserts the pattern.
// Validation happens before the embedding call, and a failure at any step
// leaves the store unmodified.
func (p *Pipeline) AddPattern(id, content, category, name string, tags []string) error {
	if err := p.ensureReady(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: pattern id", domain.ErrEmptyText)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: pattern content", domain.ErrEmptyText)
	}
	if !p.categories.Contains(category) {
		return fmt.Errorf("%w: %q (configured: %s)", domain.ErrInvalidCategory, category, strings.Join(p.categories.Names(), ", "))
	}

	vectors, err := p.embedder.Embed([]string{content})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("%w: embedder returned no vector", domain.ErrEmbedding)
	}

	err = p.store.Insert(domain.Pattern{
		ID:        id,
		Name:      name,
		Category:  category,
		Tags:      tags,
		Content:   content,
		Embedding: vectors[0],
	})
	if err != nil {
		return err
	}

	if p.cache != nil {
		p.cache.Invalidate()
	}
	return nil
}

// Retrieve is a thin passthrough to the retriever.
func (p *Pipeline) Retrieve(query, category string, topK int) ([]domain.RetrievalResult, error) {
	if err := p.ensureReady(); err != nil {
		return nil, err
	}
	return p.retriever.Retrieve(query, category, topK)
}

// Count returns the number of stored patterns.
func (p *Pipeline) Count() (int, error) {
	if err := p.ensureReady(); err != nil {
		return 0, err
	}
	return p.store.Count()
}

// Categories returns the configured category set in declaration order.
func (p *Pipeline) Categories() []string {
	if p == nil || p.categories == nil {
		return nil
	}
	return p.categories.Names()
}
