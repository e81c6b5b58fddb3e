package driven

import "context"

// VectorEntry is one (id, text, vector) triple of an index.
type VectorEntry struct {
	// ID is the chunk identifier.
	ID string

	// Text is the chunk content.
	Text string

	// Vector is the chunk embedding.
	Vector []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched chunk.
	ID string

	// Text is the matched chunk content.
	Text string

	// Similarity is the cosine similarity score.
	Similarity float64
}

// VectorStore holds the entries of a single index and searches them
// exhaustively. Search results are ordered by descending similarity with
// ties kept in insertion order.
type VectorStore interface {
	// Add appends entries in order.
	Add(ctx context.Context, entries []VectorEntry) error

	// Search returns the k entries most similar to query.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored entries.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorStoreFactory creates an empty store for vectors of the given size.
type VectorStoreFactory func(ctx context.Context, dimensions int) (VectorStore, error)
