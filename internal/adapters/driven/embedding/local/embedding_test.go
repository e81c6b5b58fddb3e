package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}

func TestStem(t *testing.T) {
	assert.Equal(t, stem("bake"), stem("baking"))
	assert.Equal(t, stem("bake"), stem("baked"))
	assert.Equal(t, stem("cake"), stem("cakes"))
	assert.Equal(t, "pie", stem("pie"))
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(0)
	a, err := svc.Embed(context.Background(), "The capital of France is Paris.")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "The capital of France is Paris.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)
	assert.InDelta(t, 1.0, cosine(a, b), 1e-6)
}

func TestEmbed_EmptyIsZero(t *testing.T) {
	vec, err := NewEmbeddingService(16).Embed(context.Background(), "the of and")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 16), vec)
}

func TestEmbedBatch_RanksRelatedText(t *testing.T) {
	svc := NewEmbeddingService(0)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"how to bake a cake", "baking tips", "rocket engine design"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	related := cosine(vecs[0], vecs[1])
	assert.Greater(t, related, 0.3)
	assert.Greater(t, related, cosine(vecs[0], vecs[2]))
}

func TestMetadata(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, ModelName, svc.ModelName())
	assert.Equal(t, "hashing", NewEmbeddingService(64).ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
