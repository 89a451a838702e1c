package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingLifecycle(t *testing.T) {
	var e Embedding
	e.Reset("一座漂浮在云海上的城市")
	assert.Equal(t, VectorStatusProcessing, e.Status)
	assert.False(t, e.HasVector())

	e.Apply([]float32{0.1, 0.2}, "一座漂浮在云海上的城市")
	assert.Equal(t, VectorStatusSuccess, e.Status)
	assert.False(t, e.Stale("一座漂浮在云海上的城市"))
	assert.True(t, e.Stale("城市沉入了海底"))

	e.Apply(nil, "x")
	assert.Equal(t, VectorStatusError, e.Status)
	assert.False(t, e.HasVector())

	e.Reset("")
	assert.Equal(t, VectorStatusNone, e.Status)
}

func TestStaleIgnoresMissingDigest(t *testing.T) {
	e := Embedding{Vector: []float32{1}}
	assert.False(t, e.Stale("anything"))
}

func TestVectorStatusColor(t *testing.T) {
	assert.Equal(t, "#FFC107", VectorStatusProcessing.Color())
	assert.Equal(t, "#4CAF50", VectorStatusSuccess.Color())
	assert.Equal(t, "#F44336", VectorStatusError.Color())
	assert.Equal(t, "transparent", VectorStatusNone.Color())
}

func TestFormatSimilarity(t *testing.T) {
	assert.Equal(t, "80%", FormatSimilarity(0.8))
	assert.Equal(t, "99%", FormatSimilarity(0.99))
	assert.Equal(t, "0%", FormatSimilarity(0))
}

func TestSetWorldviewResetsVector(t *testing.T) {
	b := NewBook("云海")
	b.WorldviewEmbedding.Apply([]float32{1, 0}, "old")
	b.SetWorldview("new")
	assert.Nil(t, b.WorldviewEmbedding.Vector)
	assert.Equal(t, VectorStatusProcessing, b.WorldviewEmbedding.Status)

	b.ClearWorldview()
	assert.Empty(t, b.Worldview)
	assert.Equal(t, VectorStatusNone, b.WorldviewEmbedding.Status)
}
