// Package vecmath holds the vector arithmetic and BLOB encoding shared by
// the vector store backends.
package vecmath

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float32 {
	return search.Float32s(v).Magnitude()
}

// Cosine returns the cosine similarity of a and b given their magnitudes.
// A zero-magnitude side or a length mismatch yields 0.
func Cosine(a, b []float32, magA, magB float32) float64 {
	if magA == 0 || magB == 0 || len(a) != len(b) {
		return 0
	}
	sim := float64(Dot(a, b)) / (float64(magA) * float64(magB))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

// Dot returns the dot product over the shorter of a and b.
func Dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := range n {
		sum += a[i] * b[i]
	}
	return sum
}

// Encode packs v as little-endian IEEE 754 float32 values.
func Encode(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// Decode unpacks a BLOB produced by Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vecmath: invalid embedding blob length %d", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
