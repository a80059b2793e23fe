package main

import (
	"context"
	"errors"

	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/providers/embedding"
	"github.com/sandevgo/workbot/internal/service/selector"
	"github.com/sandevgo/workbot/internal/service/ui"
	"github.com/sandevgo/workbot/internal/storage/transcript"
	"github.com/sandevgo/workbot/pkg/log"
	"github.com/spf13/cobra"
)

var (
	selectTranscript string
	selectQuery      string
)

var selectCmd = &cobra.Command{
	Use:          "select",
	Short:        "Show which turns of a transcript would be sent as context",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		tr, err := transcript.Load(selectTranscript)
		if err != nil {
			return err
		}

		query := selectQuery
		if query == "" {
			query = tr.Query
		}
		if query == "" {
			return errors.New("no query: pass --query or set query in the transcript")
		}

		embedder, closeFn, err := transcriptEmbedder(ctx, tr, query)
		if err != nil {
			return err
		}
		defer closeFn()

		sel, err := selector.New(*config.NewContextConfig(ctx), embedder)
		if err != nil {
			return err
		}

		selected := sel.Select(ctx, query, tr.Messages)
		return ui.RenderSelection(cmd.OutOrStdout(), tr.Messages, selected)
	},
}

// transcriptEmbedder stays offline when the transcript carries a vector for
// the query, otherwise it uses the configured provider.
func transcriptEmbedder(ctx context.Context, tr *transcript.Transcript, query string) (core.Embedder, func() error, error) {
	if _, ok := tr.Vectors[query]; !ok && query == tr.Query && len(tr.QueryEmbedding) > 0 {
		tr.Vectors[query] = tr.QueryEmbedding
	}
	if _, ok := tr.Vectors[query]; ok {
		log.FromCtx(ctx).Debug().Msg("using transcript vectors")
		return transcript.NewStaticEmbedder(tr), func() error { return nil }, nil
	}
	log.FromCtx(ctx).Debug().Msg("query has no transcript vector, using embedding provider")
	return newProviderEmbedder(ctx)
}

var newProviderEmbedder = func(ctx context.Context) (core.Embedder, func() error, error) {
	return embedding.NewFromConfig(ctx, config.NewEmbeddingConfig(ctx), nil)
}

func init() {
	selectCmd.Flags().StringVarP(&selectTranscript, "transcript", "t", "", "YAML transcript to select from")
	selectCmd.Flags().StringVarP(&selectQuery, "query", "q", "", "new user turn, defaults to the transcript query")
	_ = selectCmd.MarkFlagRequired("transcript")
	rootCmd.AddCommand(selectCmd)
}
