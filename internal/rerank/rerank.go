// Package rerank defines the cross-encoder reranking contract used by the
// second retrieval stage. A cross-encoder scores (query, document) pairs
// jointly and is far more precise than the bi-encoder similarity used for
// recall, at a cost that only pays off on a small candidate batch.
package rerank

import "context"

// Reranker scores documents against a query with a pairwise relevance model.
type Reranker interface {
	// Rerank returns one relevance score per document, in document order.
	// The batch is atomic: any failure fails the whole call and callers must
	// not use partial results.
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)

	// ModelName returns the model identifier for logging.
	ModelName() string
}
