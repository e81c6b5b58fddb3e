package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"quit", "ctrl+c", Matches("ctrl+c", km.Quit)},
		{"submit", "enter", Matches("enter", km.Submit)},
		{"next kind", "tab", Matches("tab", km.NextKind)},
		{"prev kind", "shift+tab", Matches("shift+tab", km.PrevKind)},
		{"load", "ctrl+o", Matches("ctrl+o", km.Load)},
		{"reset", "ctrl+r", Matches("ctrl+r", km.Reset)},
		{"back", "esc", Matches("esc", km.Back)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.ok, "%s should be bound to %s", tt.name, tt.key)
		})
	}
}

func TestKeyMap_QuitDoesNotSwallowTyping(t *testing.T) {
	km := DefaultKeyMap()
	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("?", km.Help))
}

func TestMatches_NoMatch(t *testing.T) {
	assert.False(t, Matches("x", DefaultKeyMap().Submit))
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()
	assert.Len(t, km.ShortHelp(), 5)

	total := 0
	for _, group := range km.FullHelp() {
		total += len(group)
	}
	assert.Equal(t, 10, total)
}
