package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// NormaliserRegistry dispatches a Source to the normaliser for its kind.
type NormaliserRegistry interface {
	// Normalise transforms src using the normaliser registered for src.Kind.
	Normalise(ctx context.Context, src domain.Source) (*NormaliseResult, error)

	// Register adds a normaliser, replacing any previous one for the same kind.
	Register(normaliser Normaliser)

	// SupportedKinds returns the kinds that can be normalised.
	SupportedKinds() []domain.SourceKind
}
