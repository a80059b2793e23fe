package selector

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/workbot/internal/core"
)

type backfillResult struct {
	Embedded int
	Failed   int
	Skipped  int
}

// backfill requests embeddings for every message that was never attempted,
// one batch call for all distinct contents, and writes the outcome onto the
// messages. Contents the batch does not return are recorded as failed
// attempts. When the batch call itself fails the messages are left
// unattempted and the error is returned.
func backfill(ctx context.Context, embedder core.Embedder, history []*core.Message) (backfillResult, error) {
	var res backfillResult

	pending := make(map[string][]*core.Message)
	var texts []string
	for _, m := range history {
		if m.Embedding.Attempted() {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			m.Embedding = core.FailedEmbedding()
			res.Failed++
			continue
		}
		if _, seen := pending[m.Content]; !seen {
			texts = append(texts, m.Content)
		}
		pending[m.Content] = append(pending[m.Content], m)
	}

	if len(texts) == 0 {
		return res, nil
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		for _, msgs := range pending {
			res.Skipped += len(msgs)
		}
		return res, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}

	for content, msgs := range pending {
		state := core.Embedded(vectors[content])
		for _, m := range msgs {
			m.Embedding = state
			if state.Status() == core.EmbeddingSucceeded {
				res.Embedded++
			} else {
				res.Failed++
			}
		}
	}
	return res, nil
}
