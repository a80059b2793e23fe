package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *MessagesRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMessagesRepo(db)
}

func TestMessagesRepo_AddAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	for i, content := range []string{"one", "two", "three", "four"} {
		m := &core.Message{Role: core.RoleUser, Content: content, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.AddMessage(ctx, "s1", m))
		assert.NotEmpty(t, m.ID)
	}
	require.NoError(t, repo.AddMessage(ctx, "s2", core.NewMessage(core.RoleUser, "other session")))

	got, err := repo.GetMessages(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "two", got[0].Content)
	assert.Equal(t, "four", got[2].Content)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(time.Minute)))
	assert.False(t, got[0].Embedding.Attempted())

	empty, err := repo.GetMessages(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessagesRepo_Embeddings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := core.NewMessage(core.RoleUser, "a")
	b := core.NewMessage(core.RoleAssistant, "b")
	c := core.NewMessage(core.RoleUser, "c")
	c.Embedding = core.Embedded([]float32{0.25, -1.5})
	for _, m := range []*core.Message{a, b, c} {
		require.NoError(t, repo.AddMessage(ctx, "s", m))
	}

	pending, err := repo.GetUnembeddedMessages(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, repo.UpdateEmbeddings(ctx, []core.EmbeddingUpdate{
		{MessageID: a.ID, Embedding: core.Embedded([]float32{1, 2, 3})},
		{MessageID: b.ID, Embedding: core.FailedEmbedding()},
	}))

	pending, err = repo.GetUnembeddedMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := repo.GetMessages(ctx, "s", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	vec, ok := got[0].Embedding.Vector()
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, core.EmbeddingFailed, got[1].Embedding.Status())
	vec, ok = got[2].Embedding.Vector()
	assert.True(t, ok)
	assert.Equal(t, []float32{0.25, -1.5}, vec)

	assert.NoError(t, repo.UpdateEmbeddings(ctx, nil))
}

func TestVectorRoundTrip(t *testing.T) {
	blob, err := serializeVector([]float32{1.5, -2, 0})
	require.NoError(t, err)
	assert.Len(t, blob, 12)

	vec, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2, 0}, vec)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
