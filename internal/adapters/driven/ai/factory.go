// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	localembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/openai"
	responsesllm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/responses"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStores     driven.VectorStoreFactory
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates every provider named by settings. Nothing is pinged; the
// first real call surfaces connectivity problems as pipeline errors.
func Init(settings domain.AppSettings) (*InitResult, error) {
	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		embedding.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	stores, err := CreateVectorStoreFactory(settings.VectorStore)
	if err != nil {
		embedding.Close()
		llm.Close()
		return nil, err
	}
	return &InitResult{EmbeddingService: embedding, LLMService: llm, VectorStores: stores}, nil
}

// CreateEmbeddingService creates the embedding service named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding provider is not set")
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(domain.EmbeddingDimensions()[settings.Model]), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, missingKey(settings.Provider)
		}
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use openai, ollama or local")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}
}

// CreateLLMService creates the completion service named by settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("LLM provider is not set")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, missingKey(settings.Provider)
		}
		if settings.API == domain.OpenAIAPIResponses {
			return createResponsesLLM(settings)
		}
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		if settings.APIKey == "" {
			return nil, missingKey(settings.Provider)
		}
		return createAnthropicLLM(settings)

	case domain.AIProviderLocal:
		return nil, fmt.Errorf("the local provider only serves embeddings")

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", settings.Provider)
	}
}

// CreateVectorStoreFactory returns the factory for the configured backend.
func CreateVectorStoreFactory(settings domain.VectorStoreSettings) (driven.VectorStoreFactory, error) {
	switch settings.Backend {
	case domain.VectorBackendMemory, "":
		return memory.NewVectorStoreFactory(), nil
	case domain.VectorBackendSQLite:
		return sqlite.NewVectorStoreFactory(), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

func missingKey(p domain.AIProvider) error {
	return fmt.Errorf("%s API key is not set (set %s or run 'docchat settings set')", p, p.APIKeyEnv())
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		MaxRetries: settings.MaxRetries,
	})
}

// createOpenAILLM creates an OpenAI chat completions service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		MaxRetries: settings.MaxRetries,
	})
}

// createResponsesLLM creates an OpenAI Responses API service.
func createResponsesLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return responsesllm.NewLLMService(responsesllm.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		MaxRetries: settings.MaxRetries,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		MaxRetries: settings.MaxRetries,
	})
}
