package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("retrieval.top_k", int64(4)))
	require.NoError(t, store.Set("llm.temperature", 0.2))
	require.NoError(t, store.Set("chunking.chunk_size", 1000))
	require.NoError(t, store.Set("verbose", true))
	require.NoError(t, store.Set("chunking.separators", []any{"\n\n", "\n", 3}))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 4, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.2, store.GetFloat("llm.temperature"), 1e-9)
	assert.InDelta(t, 1000.0, store.GetFloat("chunking.chunk_size"), 1e-9)
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, []string{"\n\n", "\n"}, store.GetStringSlice("chunking.separators"))

	// Wrong types and missing keys yield zero values.
	assert.Equal(t, "", store.GetString("retrieval.top_k"))
	assert.Equal(t, 0, store.GetInt("llm.provider"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("llm.provider"))
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("b.key", 1))
	require.NoError(t, store.Set("a.key", 2))

	assert.Equal(t, []string{"a.key", "b.key"}, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("k", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("k")
		}()
	}
	wg.Wait()
	_, ok := store.Get("k")
	assert.True(t, ok)
}
