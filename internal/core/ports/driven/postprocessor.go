package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// PostProcessor turns a normalised document into retrievable chunks, or
// refines the chunks an earlier stage produced.
type PostProcessor interface {
	// Name identifies the stage in logs and in chunking settings.
	Name() string

	// Process receives nil chunks when it is the first stage.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs a document through its stages in order and
// returns the chunks handed to the embedding step.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
