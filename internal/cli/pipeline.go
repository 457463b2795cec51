package cli

import (
	"fmt"
	"time"

	"delm/config"
	"delm/internal/adapter/analyzer"
	"delm/internal/adapter/cache"
	"delm/internal/adapter/embedding"
	"delm/internal/adapter/generator"
	"delm/internal/adapter/store"
	"delm/internal/port"
	"delm/internal/usecase"
)

// buildPipeline constructs the full pipeline from configuration. The returned
// cleanup closes the store and must be deferred by the caller.
func buildPipeline(cfg *config.Config, rootDir string) (*usecase.Pipeline, func(), error) {
	categories := cfg.CategorySet()

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	st, err := openStore(cfg, rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open pattern store: %w", err)
	}

	gen, err := generator.New(cfg.Generator)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	assembler, err := usecase.NewAssembler(analyzer.NewTokenizer(), cfg.Assemble.TokenBudget)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create assembler: %w", err)
	}

	var retriever port.Retriever = usecase.NewRetriever(embedder, st, cfg.Retrieve.MinScore)
	var qcache *cache.QueryCache
	if cfg.Retrieve.CacheEnabled {
		qcache = cache.NewQueryCache(100, 5*time.Minute)
		retriever = cache.NewCachedRetriever(retriever, qcache)
	}

	pipeline, err := usecase.NewPipeline(categories, embedder, st, retriever, assembler, gen, qcache, cfg.Retrieve.TopK)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return pipeline, func() { st.Close() }, nil
}

// openStore opens the configured pattern store backend.
func openStore(cfg *config.Config, rootDir string) (port.PatternStore, error) {
	categories := cfg.CategorySet()
	dimension := cfg.Embedding.Dimension

	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(categories, dimension), nil
	case "qdrant":
		return store.NewQdrantStore(cfg.Store.Qdrant.Addr, cfg.Store.Qdrant.Collection, categories, dimension)
	case "bolt":
		path := cfg.Store.Path
		if path == "" {
			if err := config.EnsureDELMDir(rootDir); err != nil {
				return nil, fmt.Errorf("failed to create .delm directory: %w", err)
			}
			path = config.PatternDBPath(rootDir)
		}
		return store.NewBoltStore(path, categories, dimension)
	}
	return nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
}
