package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/workbot/internal/config"
	"github.com/sandevgo/workbot/internal/providers/llm"
	"github.com/sandevgo/workbot/internal/service/agent"
	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:          "ask [question]",
	Short:        "Ask one question within a stored session",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		c := newComponents(ctx)
		defer c.close(ctx)

		ai, err := llm.NewProvider(ctx, config.NewLLMConfig(ctx))
		if err != nil {
			return err
		}

		reply, err := agent.NewAgent(ai, c.memory).Run(ctx, askSession, strings.Join(args, " "))
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
		return err
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "default", "conversation session id")
	rootCmd.AddCommand(askCmd)
}
