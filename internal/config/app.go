package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/workbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"WORKBOT_RUNTIME_PATH" envDefault:".workbot"`

	// Number of stored messages handed to context selection
	HistoryLimit int `env:"HISTORY_LIMIT" envDefault:"200"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9464"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetHistoryLimit() int {
	return c.HistoryLimit
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetIdentityPath() string {
	return filepath.Join(c.RuntimePath, "IDENTITY.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "workbot.db")
}
