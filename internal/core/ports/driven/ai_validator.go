package driven

import "github.com/custodia-labs/docchat/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved or
// used, by building the adapter they describe and pinging it.
type AIConfigValidator interface {
	// ValidateEmbedding returns the ping or construction error, if any.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM returns the ping or construction error, if any.
	ValidateLLM(config *domain.LLMSettings) error
}
