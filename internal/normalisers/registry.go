package normalisers

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches sources to the normaliser registered for their kind.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.SourceKind]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{normalisers: make(map[domain.SourceKind]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser, replacing any previous one for the same kind.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers[n.Kind()] = n
}

// SupportedKinds returns the registered kinds in display order.
func (r *Registry) SupportedKinds() []domain.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var kinds []domain.SourceKind
	for _, k := range domain.AllSourceKinds() {
		if _, ok := r.normalisers[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Normalise validates src and hands it to the normaliser for its kind.
func (r *Registry) Normalise(ctx context.Context, src domain.Source) (*driven.NormaliseResult, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	n, ok := r.normalisers[src.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedKind, src.Kind)
	}

	defer logger.Timed("normalise " + src.Kind.String())()
	result, err := n.Normalise(ctx, src)
	if err != nil {
		return nil, err
	}
	logger.Debug("normalised %q: %d chars", src.Name, len(result.Document.Content))
	return result, nil
}
