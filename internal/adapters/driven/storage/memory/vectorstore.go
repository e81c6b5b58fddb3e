package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory exhaustive cosine index.
type VectorStore struct {
	mu         sync.RWMutex
	dimensions int
	entries    []driven.VectorEntry
	magnitudes []float32
}

// NewVectorStore creates an empty store for vectors of the given size.
func NewVectorStore(dimensions int) *VectorStore {
	return &VectorStore{dimensions: dimensions}
}

// NewVectorStoreFactory returns a driven.VectorStoreFactory producing
// in-memory stores.
func NewVectorStoreFactory() driven.VectorStoreFactory {
	return func(_ context.Context, dimensions int) (driven.VectorStore, error) {
		return NewVectorStore(dimensions), nil
	}
}

// Add appends entries in order. Every vector must match the store's size.
func (s *VectorStore) Add(_ context.Context, entries []driven.VectorEntry) error {
	for i, e := range entries {
		if len(e.Vector) != s.dimensions {
			return fmt.Errorf("entry %d: vector has %d dimensions, want %d", i, len(e.Vector), s.dimensions)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		vec := append([]float32(nil), e.Vector...)
		s.entries = append(s.entries, driven.VectorEntry{ID: e.ID, Text: e.Text, Vector: vec})
		s.magnitudes = append(s.magnitudes, vecmath.Magnitude(vec))
	}
	return nil
}

// Search scores every entry and returns the top k. Equal scores keep
// insertion order.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, want %d", len(query), s.dimensions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}

	qm := vecmath.Magnitude(query)
	hits := make([]driven.VectorHit, len(s.entries))
	for i, e := range s.entries {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{
			ID:         e.ID,
			Text:       e.Text,
			Similarity: vecmath.Cosine(query, e.Vector, qm, s.magnitudes[i]),
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Similarity > hits[b].Similarity })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of stored entries.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close drops all entries.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.magnitudes = nil
	return nil
}
