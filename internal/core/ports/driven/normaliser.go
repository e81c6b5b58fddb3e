package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Normaliser turns one arm of a Source into a plain-text Document.
type Normaliser interface {
	// Kind returns the source kind this normaliser handles.
	Kind() domain.SourceKind

	// Normalise extracts the text of src.
	// Web failures wrap domain.ErrFetch; malformed documents wrap domain.ErrParse.
	Normalise(ctx context.Context, src domain.Source) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
