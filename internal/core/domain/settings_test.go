package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1000, s.Chunking.ChunkSize)
	assert.Equal(t, 200, s.Chunking.ChunkOverlap)
	assert.Equal(t, 4, s.Retrieval.TopK)
	assert.Equal(t, VectorBackendMemory, s.VectorStore.Backend)
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
	}{
		{"zero chunk size", func(s *AppSettings) { s.Chunking.ChunkSize = 0 }},
		{"overlap equals size", func(s *AppSettings) { s.Chunking.ChunkOverlap = s.Chunking.ChunkSize }},
		{"negative overlap", func(s *AppSettings) { s.Chunking.ChunkOverlap = -1 }},
		{"zero top k", func(s *AppSettings) { s.Retrieval.TopK = 0 }},
		{"zero timeout", func(s *AppSettings) { s.Retrieval.ProviderTimeout = 0 }},
		{"bad backend", func(s *AppSettings) { s.VectorStore.Backend = "faiss" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

func TestAIProvider(t *testing.T) {
	assert.True(t, AIProviderLocal.IsValid())
	assert.True(t, AIProviderLocal.IsLocal())
	assert.False(t, AIProviderLocal.RequiresAPIKey())
	assert.Equal(t, "OPENAI_API_KEY", AIProviderOpenAI.APIKeyEnv())
	assert.Equal(t, "ANTHROPIC_API_KEY", AIProviderAnthropic.APIKeyEnv())
	assert.False(t, AIProvider("cohere").IsValid())
}

func TestSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderLocal}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderLocal}.IsConfigured())
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(ChunkingSettings{ChunkSize: 300, ChunkOverlap: 30})
	assert.Equal(t, []string{"chunker"}, cfg.Processors)
	assert.Equal(t, 300, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Nil(t, cfg.GetProcessorConfig("missing"))
}
