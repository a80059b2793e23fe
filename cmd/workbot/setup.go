package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/internal/metrics"
	"github.com/sandevgo/workbot/internal/providers/embedding"
	"github.com/sandevgo/workbot/internal/service/memory"
	"github.com/sandevgo/workbot/internal/service/selector"
	"github.com/sandevgo/workbot/internal/storage/sqlite"
	"github.com/sandevgo/workbot/pkg/log"
	"github.com/sandevgo/workbot/pkg/srv"
)

// components are shared by serve and ask.
type components struct {
	appCfg   *config.AppConfig
	registry *prometheus.Registry
	repo     core.MessagesRepository
	embedder core.Embedder
	memory   *memory.Memory
	// cleanups release resources, in start order
	cleanups []srv.Service
}

func newComponents(ctx context.Context) *components {
	logger := log.FromCtx(ctx)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ctxCfg := config.NewContextConfig(ctx)
	embCfg := config.NewEmbeddingConfig(ctx)

	c := &components{
		appCfg:   appCfg,
		registry: newRegistry(),
	}

	// 2. Storage
	db, repo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	c.repo = repo
	c.cleanups = append(c.cleanups, srv.NewCleanup(db.Close))

	// 3. Embeddings
	embedder, closeCache, err := embedding.NewFromConfig(ctx, embCfg, metrics.NewCache(c.registry))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	c.embedder = embedder
	c.cleanups = append(c.cleanups, srv.NewCleanup(closeCache))

	// 4. Context selection
	sel, err := selector.New(*ctxCfg, embedder, selector.WithMetrics(metrics.NewSelection(c.registry)))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize context selector")
	}

	c.memory = memory.NewMemory(appCfg, repo, sel, memory.NewSysPrompt(appCfg))
	return c
}

func (c *components) close(ctx context.Context) {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		if err := c.cleanups[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("cleanup failed")
		}
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, core.MessagesRepository, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewMessagesRepo(db), nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
