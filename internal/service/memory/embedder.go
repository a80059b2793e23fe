package memory

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/pkg/log"
)

const (
	EmbedderBatchSize    = 30
	EmbedderPollInterval = 5 * time.Second
)

// EmbedderWorker embeds stored messages in the background so selection
// rarely has to backfill on the request path.
type EmbedderWorker struct {
	repo      core.MessagesRepository
	embedder  core.Embedder
	interval  time.Duration
	batchSize int
}

func NewEmbedderWorker(repo core.MessagesRepository, embedder core.Embedder) *EmbedderWorker {
	return &EmbedderWorker{
		repo:      repo,
		embedder:  embedder,
		interval:  EmbedderPollInterval,
		batchSize: EmbedderBatchSize,
	}
}

func (w *EmbedderWorker) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "embedder_worker")
	logger := log.FromCtx(ctx)
	logger.Info().Msg("starting embedding worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down embedding worker")
			return nil
		case <-ticker.C:
			n, err := w.processBatch(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("embedding batch failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int("count", n).Msg("embedded stored messages")
			}
		}
	}
}

func (w *EmbedderWorker) Shutdown(ctx context.Context) error {
	return nil
}

// processBatch embeds one batch of unembedded messages with a single batch
// call. Messages without a returned vector are stored as failed attempts.
// If the call fails nothing is written.
func (w *EmbedderWorker) processBatch(ctx context.Context) (int, error) {
	msgs, err := w.repo.GetUnembeddedMessages(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	var texts []string
	seen := make(map[string]struct{}, len(msgs))
	for _, msg := range msgs {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if _, ok := seen[msg.Content]; !ok {
			seen[msg.Content] = struct{}{}
			texts = append(texts, msg.Content)
		}
	}

	vectors := map[string][]float32{}
	if len(texts) > 0 {
		vectors, err = w.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, err
		}
	}

	updates := make([]core.EmbeddingUpdate, 0, len(msgs))
	for _, msg := range msgs {
		updates = append(updates, core.EmbeddingUpdate{
			MessageID: msg.ID,
			Embedding: core.Embedded(vectors[msg.Content]),
		})
	}

	if err := w.repo.UpdateEmbeddings(ctx, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}
