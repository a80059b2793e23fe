package main

import (
	"fmt"

	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration as .env lines",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		out, err := env.Marshal(
			config.NewAppConfig(ctx),
			config.NewContextConfig(ctx),
			config.NewEmbeddingConfig(ctx),
			config.NewLLMConfig(ctx),
		)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
