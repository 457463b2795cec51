package port

import "delm/internal/domain"

// Assembler turns ranked retrieval results plus a generation-type directive
// into a bounded prompt context.
type Assembler interface {
	Assemble(genType domain.GenerationType, results []domain.RetrievalResult) (domain.AssembledContext, error)
}
