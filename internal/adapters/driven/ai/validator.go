package ai

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultPingTimeout bounds a single provider ping.
const DefaultPingTimeout = 5 * time.Second

// pinger is the part of a provider adapter the validator needs.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ConfigValidator checks provider settings by building the adapter they
// describe and pinging it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using DefaultPingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultPingTimeout}
}

// WithTimeout overrides the ping timeout. Non-positive values are ignored.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d > 0 {
		v.timeout = d
	}
	return v
}

// ValidateEmbedding reports whether the embedding provider is reachable
// with the given credentials.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return errors.New("embedding settings are required")
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	return v.ping(svc)
}

// ValidateLLM reports whether the completion provider is reachable with
// the given credentials.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return errors.New("llm settings are required")
	}
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	return v.ping(svc)
}

func (v *ConfigValidator) ping(svc pinger) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
