package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/workbot/internal/metrics"
	"github.com/sandevgo/workbot/internal/service/memory"
	"github.com/sandevgo/workbot/pkg/log"
	"github.com/sandevgo/workbot/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the embedding worker and metrics endpoint",
	Long:  `Embeds stored messages in the background and serves Prometheus metrics until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting workbot")

		c := newComponents(ctx)
		services := append(c.cleanups,
			memory.NewEmbedderWorker(c.repo, c.embedder),
			metrics.NewServer(c.appCfg.MetricsAddr, c.registry),
		)

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("workbot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
