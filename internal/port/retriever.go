package port

import "delm/internal/domain"

// Retriever embeds a query and runs a filtered similarity search against the
// pattern store. Calls are independent and side-effect-free on the store.
type Retriever interface {
	// Retrieve returns up to topK results for the query, scoped to
	// category when it is non-empty. topK must be positive.
	Retrieve(query, category string, topK int) ([]domain.RetrievalResult, error)
}
