package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestSettingsShow(t *testing.T) {
	settings := newMockSettings()
	settings.settings.LLM.APIKey = "sk-1234567890abcdef"
	useServices(t, settings, nil)

	out, err := execute(t, "", "settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[Retrieval]")
	assert.Contains(t, out, "Top K: 4")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "API Key: (not set)")
	assert.NotContains(t, out, "1234567890")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_WithoutService(t *testing.T) {
	useServices(t, nil, nil)
	SetServices(nil, nil)

	_, err := execute(t, "", "settings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSettingsSet(t *testing.T) {
	settings := newMockSettings()
	useServices(t, settings, nil)

	out, err := execute(t, "", "settings", "set", "retrieval.top_k", "6")
	require.NoError(t, err)
	assert.Equal(t, "6", settings.set["retrieval.top_k"])
	assert.Contains(t, out, "retrieval.top_k = 6")

	out, err = execute(t, "", "settings", "set", "llm.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.Equal(t, "sk-1234567890abcdef", settings.set["llm.api_key"])
	assert.Contains(t, out, "llm.api_key = sk-1...cdef")
}

func TestSettingsSet_Errors(t *testing.T) {
	settings := newMockSettings()
	useServices(t, settings, nil)

	_, err := execute(t, "", "settings", "set", "retrieval.top_k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a value is required")

	settings.setErr = errors.New("invalid input: top_k must be positive")
	_, err = execute(t, "", "settings", "set", "retrieval.top_k", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set retrieval.top_k")
}

func TestSettingsKeys(t *testing.T) {
	useServices(t, newMockSettings(), nil)

	out, err := execute(t, "", "settings", "keys")
	require.NoError(t, err)
	assert.Equal(t, "llm.provider\nretrieval.top_k\n", out)
}

func TestSettingsCheck(t *testing.T) {
	settings := newMockSettings()
	useServices(t, settings, nil)

	out, err := execute(t, "", "settings", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Embedding provider... OK")
	assert.Contains(t, out, "LLM provider... OK")

	settings.llmErr = errors.New("401 unauthorized")
	out, err = execute(t, "", "settings", "check")
	require.Error(t, err)
	assert.Contains(t, out, "LLM provider... FAILED: 401 unauthorized")
}
