package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vec/search"
)

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{2, 0}

	assert.InDelta(t, 0.0, Cosine(a, b, Magnitude(a), Magnitude(b)), 1e-6)
	assert.InDelta(t, 1.0, Cosine(a, c, Magnitude(a), Magnitude(c)), 1e-6)
	assert.Equal(t, 0.0, Cosine(a, []float32{0, 0}, Magnitude(a), 0))
	assert.Equal(t, 0.0, Cosine(a, []float32{1, 0, 0}, 1, 1))
}

func TestEncodeDecode(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	got, err := Decode(Encode(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCosine_MatchesLibraryDistance(t *testing.T) {
	a := []float32{0.3, -1.2, 2.5, 0.7}
	b := []float32{1.1, 0.4, -0.6, 2.0}

	want := 1 - float64(search.Float32s(a).CosineDistance(b))
	assert.InDelta(t, want, Cosine(a, b, Magnitude(a), Magnitude(b)), 1e-5)
	assert.InDelta(t, -1.0, Cosine(a, []float32{-0.3, 1.2, -2.5, -0.7}, Magnitude(a), Magnitude(a)), 1e-5)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, float64(Dot([]float32{1, 2, 3}, []float32{3, 4})), 1e-6)
	assert.Zero(t, Dot(nil, []float32{1}))
}
