package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMAPI           = "llm.api"
	keyLLMMaxRetries    = "llm.max_retries"
	keyLLMTemperature   = "llm.temperature"
	keyChunkSize        = "chunking.chunk_size"
	keyChunkOverlap     = "chunking.chunk_overlap"
	keyTopK             = "retrieval.top_k"
	keyMaxContextTokens = "retrieval.max_context_tokens"
	keyProviderTimeout  = "retrieval.provider_timeout"
	keyVectorBackend    = "vector_store.backend"
)

// settingKeys lists the settable keys in display order.
var settingKeys = []string{
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMAPI, keyLLMMaxRetries, keyLLMTemperature,
	keyChunkSize, keyChunkOverlap,
	keyTopK, keyMaxContextTokens, keyProviderTimeout,
	keyVectorBackend,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// API keys missing from the config store are read from the environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrConfigNotFound
	}
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.apiKey(keyEmbedAPIKey, embedProvider),
		},
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.apiKey(keyLLMAPIKey, llmProvider),
			API:         domain.OpenAIAPI(s.getString(keyLLMAPI, string(defaults.LLM.API))),
			MaxRetries:  s.configStore.GetInt(keyLLMMaxRetries),
			Temperature: s.configStore.GetFloat(keyLLMTemperature),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.Chunking.ChunkOverlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:             s.getInt(keyTopK, defaults.Retrieval.TopK),
			MaxContextTokens: s.getInt(keyMaxContextTokens, defaults.Retrieval.MaxContextTokens),
			ProviderTimeout:  s.getDuration(keyProviderTimeout, defaults.Retrieval.ProviderTimeout),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend: domain.VectorBackend(s.getString(keyVectorBackend, string(defaults.VectorStore.Backend))),
		},
	}

	// An explicitly stored zero overlap is valid.
	if _, ok := s.configStore.Get(keyChunkOverlap); ok {
		settings.Chunking.ChunkOverlap = s.configStore.GetInt(keyChunkOverlap)
	}

	return settings, nil
}

// Save persists application settings.
// API keys are only written when they differ from the environment.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrConfigNotFound
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	type entry struct {
		key   string
		value any
	}
	values := []entry{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPI, string(settings.LLM.API)},
		{keyLLMMaxRetries, settings.LLM.MaxRetries},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.ChunkOverlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyMaxContextTokens, settings.Retrieval.MaxContextTokens},
		{keyProviderTimeout, settings.Retrieval.ProviderTimeout.String()},
		{keyVectorBackend, string(settings.VectorStore.Backend)},
	}
	if !s.fromEnv(settings.Embedding.Provider, settings.Embedding.APIKey) {
		values = append(values, entry{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if !s.fromEnv(settings.LLM.Provider, settings.LLM.APIKey) {
		values = append(values, entry{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key, checks the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	var typed any = value

	switch key {
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || p == domain.AIProviderAnthropic {
			return fmt.Errorf("%w: %q is not an embedding provider", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || p == domain.AIProviderLocal {
			return fmt.Errorf("%w: %q is not an LLM provider", domain.ErrInvalidInput, value)
		}
	case keyLLMAPI:
		if api := domain.OpenAIAPI(value); api != domain.OpenAIAPIChat && api != domain.OpenAIAPIResponses {
			return fmt.Errorf("%w: llm.api must be %q or %q", domain.ErrInvalidInput, domain.OpenAIAPIChat, domain.OpenAIAPIResponses)
		}
	case keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey:
	case keyLLMMaxRetries, keyChunkSize, keyChunkOverlap, keyTopK, keyMaxContextTokens:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case keyLLMTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("%w: %s must be a number in [0, 2]", domain.ErrInvalidInput, key)
		}
		typed = f
	case keyProviderTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 30s", domain.ErrInvalidInput, key)
		}
		settings.Retrieval.ProviderTimeout = d
		typed = d.String()
	case keyVectorBackend:
		settings.VectorStore.Backend = domain.VectorBackend(value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if n, ok := typed.(int); ok {
		switch key {
		case keyChunkSize:
			settings.Chunking.ChunkSize = n
		case keyChunkOverlap:
			settings.Chunking.ChunkOverlap = n
		case keyTopK:
			settings.Retrieval.TopK = n
		}
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	return s.configStore.Set(key, typed)
}

// Keys returns the settable config keys in display order.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		if secs := s.configStore.GetInt(key); secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// apiKey prefers the stored key and falls back to the provider's
// environment variable.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if env := provider.APIKeyEnv(); env != "" {
		if val, ok := s.lookupEnv(env); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func (s *SettingsService) fromEnv(provider domain.AIProvider, key string) bool {
	env := provider.APIKeyEnv()
	if env == "" || key == "" {
		return key == ""
	}
	val, ok := s.lookupEnv(env)
	return ok && strings.TrimSpace(val) == key
}
