package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// DefaultEmbedBatchSize is the number of chunks sent per EmbedBatch call.
const DefaultEmbedBatchSize = 64

// IndexerConfig tunes index construction and querying.
type IndexerConfig struct {
	// BatchSize bounds each EmbedBatch call. Defaults to DefaultEmbedBatchSize.
	BatchSize int

	// DefaultK is used when a query asks for k <= 0.
	DefaultK int

	// Timeout bounds each embedding call. Zero means no extra bound.
	Timeout time.Duration
}

// Indexer builds vector indexes from chunks.
type Indexer struct {
	embedder driven.EmbeddingService
	stores   driven.VectorStoreFactory
	cfg      IndexerConfig
}

// NewIndexer creates an indexer that embeds with embedder and stores
// vectors in stores created by the factory.
func NewIndexer(embedder driven.EmbeddingService, stores driven.VectorStoreFactory, cfg IndexerConfig) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = domain.DefaultTopK
	}
	return &Indexer{embedder: embedder, stores: stores, cfg: cfg}
}

// Build embeds every chunk and returns an index over them.
// The returned index must be closed by the caller.
func (x *Indexer) Build(ctx context.Context, chunks []domain.Chunk) (*Index, error) {
	defer logger.Timed(fmt.Sprintf("index %d chunks", len(chunks)))()

	idx := &Index{
		embedder: x.embedder,
		cfg:      x.cfg,
		chunks:   make(map[string]domain.Chunk, len(chunks)),
	}
	if len(chunks) == 0 {
		logger.Debug("no chunks to index")
		return idx, nil
	}

	progress := rate.Sometimes{First: 1, Interval: 2 * time.Second}
	dims := x.embedder.Dimensions()

	for start := 0; start < len(chunks); start += x.cfg.BatchSize {
		end := min(start+x.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := x.embedBatch(ctx, texts)
		if err != nil {
			_ = idx.Close()
			return nil, err
		}
		if len(vectors) != len(batch) {
			_ = idx.Close()
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vectors), len(batch))
		}

		if idx.store == nil {
			if len(vectors[0]) == 0 {
				return nil, fmt.Errorf("%w: empty vector", domain.ErrEmbedding)
			}
			if dims > 0 && len(vectors[0]) != dims {
				return nil, fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrEmbedding, dims, len(vectors[0]))
			}
			dims = len(vectors[0])
			store, err := x.stores(ctx, dims)
			if err != nil {
				return nil, fmt.Errorf("create vector store: %w", err)
			}
			idx.store = store
			idx.dims = dims
		}

		entries := make([]driven.VectorEntry, len(batch))
		for i, c := range batch {
			if err := checkVector(vectors[i], dims); err != nil {
				_ = idx.Close()
				return nil, fmt.Errorf("chunk %d: %w", c.Position, err)
			}
			entries[i] = driven.VectorEntry{ID: c.ID, Text: c.Content, Vector: vectors[i]}
			idx.chunks[c.ID] = c
		}
		if err := idx.store.Add(ctx, entries); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("add vectors: %w", err)
		}

		progress.Do(func() {
			logger.Debug("embedded %d/%d chunks", end, len(chunks))
		})
	}

	logger.Debug("index ready: %d chunks, %d dimensions", idx.Len(), dims)
	return idx, nil
}

func (x *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := withProviderTimeout(ctx, x.cfg.Timeout)
	defer cancel()
	vectors, err := x.embedder.EmbedBatch(callCtx, texts)
	if err != nil {
		return nil, embeddingError(err)
	}
	return vectors, nil
}

// Index is an immutable set of embedded chunks.
type Index struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	cfg      IndexerConfig
	dims     int
	chunks   map[string]domain.Chunk
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	if i == nil || i.store == nil {
		return 0
	}
	return i.store.Len()
}

// Query embeds text and returns the k most similar chunks, best first.
// Ties keep the order in which chunks were indexed.
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if i.Len() == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = i.cfg.DefaultK
	}

	callCtx, cancel := withProviderTimeout(ctx, i.cfg.Timeout)
	vector, err := i.embedder.Embed(callCtx, text)
	cancel()
	if err != nil {
		return nil, embeddingError(err)
	}
	if err := checkVector(vector, i.dims); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	hits, err := i.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		chunk, ok := i.chunks[h.ID]
		if !ok {
			chunk = domain.Chunk{ID: h.ID, Content: h.Text}
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: h.Similarity})
	}
	return results, nil
}

// Close releases the underlying vector store.
func (i *Index) Close() error {
	if i == nil || i.store == nil {
		return nil
	}
	err := i.store.Close()
	i.store = nil
	return err
}

func checkVector(v []float32, dims int) error {
	if len(v) != dims {
		return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrEmbedding, dims, len(v))
	}
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w: vector contains NaN or Inf", domain.ErrEmbedding)
		}
	}
	return nil
}

func embeddingError(err error) error {
	if errors.Is(err, domain.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
}

func withProviderTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
