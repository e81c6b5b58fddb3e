package services

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Retriever turns a question in context into ranked chunks.
type Retriever struct {
	reformulator *Reformulator
}

// NewRetriever creates a retriever that reformulates before searching.
func NewRetriever(reformulator *Reformulator) *Retriever {
	return &Retriever{reformulator: reformulator}
}

// Retrieve reformulates question against history and queries index for
// the k best chunks.
func (r *Retriever) Retrieve(
	ctx context.Context, index *Index, history []domain.Turn, question string, k int,
) (domain.RetrievalResult, error) {
	query, err := r.reformulator.Reformulate(ctx, history, question)
	if err != nil {
		return domain.RetrievalResult{}, err
	}

	chunks, err := index.Query(ctx, query, k)
	if err != nil {
		return domain.RetrievalResult{}, err
	}
	return domain.RetrievalResult{Query: query, Chunks: chunks}, nil
}
