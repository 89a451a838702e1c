package messaging

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(4))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(50))
}

func TestEmbeddingJobPayload(t *testing.T) {
	msg, err := NewMessage("m-1", TypeEmbedCharacter, 7, &EmbeddingJobMessage{
		Kind: "character", TargetID: 42, BookID: 7, Digest: "abc",
	})
	require.NoError(t, err)

	var job EmbeddingJobMessage
	require.NoError(t, msg.UnmarshalPayload(&job))
	assert.Equal(t, int64(42), job.TargetID)
	assert.Equal(t, int64(7), msg.BookID)
	assert.Empty(t, msg.GetMetadata("missing"))
}

func TestDLQStream(t *testing.T) {
	assert.Equal(t, "dlq:stream:embedding:jobs", StreamEmbeddingJobs.DLQStream())
}

func TestDecode(t *testing.T) {
	_, ok := decode(redis.XMessage{ID: "1-0", Values: map[string]any{"data": 12}})
	assert.False(t, ok)

	_, ok = decode(redis.XMessage{ID: "1-1", Values: map[string]any{"data": "{not json"}})
	assert.False(t, ok)

	msg, ok := decode(redis.XMessage{ID: "1-2", Values: map[string]any{
		"data": `{"id":"m-2","type":"embed_chapter","book_id":3,"payload":{"kind":"chapter","target_id":9}}`,
	}})
	require.True(t, ok)
	assert.Equal(t, TypeEmbedChapter, msg.Type)
	assert.Equal(t, int64(3), msg.BookID)
}
