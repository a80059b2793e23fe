package main

import (
	"context"
	"testing"
	"time"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/storage/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectTranscriptYAML = `
query: old question
query_embedding: [1, 0]
messages:
  - role: user
    content: old question
    offset: -2m
    embedding: [1, 0]
  - role: assistant
    content: old answer
    offset: -1m
    embedding: [0.9, 0.1]
`

type providerStub struct{}

func (providerStub) Embed(context.Context, string) ([]float32, error) {
	return []float32{0, 1}, nil
}

func (providerStub) EmbedBatch(context.Context, []string) (map[string][]float32, error) {
	return map[string][]float32{}, nil
}

func stubProvider(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := newProviderEmbedder
	newProviderEmbedder = func(context.Context) (core.Embedder, func() error, error) {
		calls++
		return providerStub{}, func() error { return nil }, nil
	}
	t.Cleanup(func() { newProviderEmbedder = orig })
	return &calls
}

func parseSelectTranscript(t *testing.T) *transcript.Transcript {
	t.Helper()
	tr, err := transcript.Parse([]byte(selectTranscriptYAML), time.Now())
	require.NoError(t, err)
	return tr
}

func TestTranscriptEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("transcript query stays offline", func(t *testing.T) {
		calls := stubProvider(t)
		tr := parseSelectTranscript(t)

		emb, closeFn, err := transcriptEmbedder(ctx, tr, "old question")
		require.NoError(t, err)
		defer closeFn()

		assert.IsType(t, &transcript.StaticEmbedder{}, emb)
		vec, err := emb.Embed(ctx, "old question")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, vec)
		assert.Zero(t, *calls)
	})

	t.Run("overriding query uses the provider", func(t *testing.T) {
		calls := stubProvider(t)
		tr := parseSelectTranscript(t)

		emb, closeFn, err := transcriptEmbedder(ctx, tr, "a totally different question")
		require.NoError(t, err)
		defer closeFn()

		assert.Equal(t, 1, *calls)
		vec, err := emb.Embed(ctx, "a totally different question")
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 1}, vec)
		assert.NotContains(t, tr.Vectors, "a totally different question")
	})

	t.Run("query with its own vector stays offline", func(t *testing.T) {
		calls := stubProvider(t)
		tr := parseSelectTranscript(t)
		tr.Vectors["follow up"] = []float32{0.5, 0.5}

		emb, _, err := transcriptEmbedder(ctx, tr, "follow up")
		require.NoError(t, err)

		vec, err := emb.Embed(ctx, "follow up")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.5}, vec)
		assert.Zero(t, *calls)
	})
}
