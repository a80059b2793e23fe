package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedding_States(t *testing.T) {
	var zero Embedding
	assert.Equal(t, EmbeddingNotAttempted, zero.Status())
	assert.False(t, zero.Attempted())
	_, ok := zero.Vector()
	assert.False(t, ok)

	failed := FailedEmbedding()
	assert.True(t, failed.Attempted())
	assert.Equal(t, "failed", failed.Status().String())
	_, ok = failed.Vector()
	assert.False(t, ok)

	ok1 := Embedded([]float32{0.1, 0.2})
	vec, ok := ok1.Vector()
	assert.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, "succeeded", ok1.Status().String())
}

func TestEmbedded_EmptyVectorIsFailure(t *testing.T) {
	assert.Equal(t, EmbeddingFailed, Embedded(nil).Status())
	assert.Equal(t, EmbeddingFailed, Embedded([]float32{}).Status())
}

func TestNewMessage(t *testing.T) {
	m := NewMessage(RoleUser, "hi")
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.False(t, m.Embedding.Attempted())
	assert.Equal(t, NotAttempted(), m.Embedding)
}
