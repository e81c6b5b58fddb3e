// Package llm holds helpers shared by the completion provider adapters.
// The adapters themselves live in the provider subpackages.
package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// ErrEmptyCompletion is returned when a provider answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// overflowMarkers are substrings providers use when a prompt is too large.
var overflowMarkers = []string{
	"context_length_exceeded",
	"maximum context length",
	"context window",
	"prompt is too long",
	"too many tokens",
}

// IsContextOverflow reports whether a provider error message describes a
// prompt that exceeds the model's input limit.
func IsContextOverflow(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range overflowMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Wrap classifies a provider failure as domain.ErrContextOverflow or
// domain.ErrGeneration. Errors already carrying either kind pass through.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrContextOverflow) || errors.Is(err, domain.ErrGeneration) {
		return err
	}
	if IsContextOverflow(err.Error()) {
		return fmt.Errorf("%w: %s: %w", domain.ErrContextOverflow, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrGeneration, provider, err)
}
