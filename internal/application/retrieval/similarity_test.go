package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.4, -0.7, 1.9}

	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilaritySelf(t *testing.T) {
	v := []float32{0.25, 0.5, -0.75, 1}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarityMismatchSafety(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{}, []float32{}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestCosineSimilarityKnownValue(t *testing.T) {
	assert.Equal(t, 0.96, CosineSimilarity([]float32{3, 4}, []float32{4, 3}))
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-12)
	assert.False(t, math.IsNaN(CosineSimilarity([]float32{0}, []float32{0})))
}
