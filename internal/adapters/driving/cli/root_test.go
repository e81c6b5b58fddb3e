package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docchat", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"ask", "chat", "tui", "mcp", "settings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestNewConversation_RequiresServices(t *testing.T) {
	useServices(t, nil, nil)
	SetServices(nil, nil)

	_, err := newConversation(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	SetServices(newMockSettings(), nil)
	_, err = newConversation(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation service not configured")
}

func TestNewConversation_AppliesOverride(t *testing.T) {
	captured := useServices(t, newMockSettings(), &mockConversation{})

	_, err := newConversation(context.Background(), func(s *domain.AppSettings) {
		s.Retrieval.TopK = 9
	})
	require.NoError(t, err)
	assert.Equal(t, 9, captured.Retrieval.TopK)
}

func TestNewConversation_RejectsInvalidSettings(t *testing.T) {
	useServices(t, newMockSettings(), &mockConversation{})

	_, err := newConversation(context.Background(), func(s *domain.AppSettings) {
		s.Chunking.ChunkOverlap = s.Chunking.ChunkSize
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
