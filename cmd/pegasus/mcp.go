package main

import (
	"github.com/spf13/cobra"

	"github.com/termfx/pegasus/internal/config"
	"github.com/termfx/pegasus/mcp"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the linter to AI agents over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			cfg.Debug = cfg.Debug || g.debug
			if err := cfg.Validate(); err != nil {
				return err
			}

			server := mcp.NewStdioServer(mcp.Config{
				Rules:     cfg.EnabledRules(),
				MaxPasses: cfg.MaxPasses,
				Workers:   cfg.Workers,
				Include:   cfg.Include,
				Exclude:   cfg.Exclude,
				Debug:     cfg.Debug,
				LogWriter: cmd.ErrOrStderr(),
			}, cmd.InOrStdin(), cmd.OutOrStdout())
			return server.Start(cmd.Context())
		},
	}
}
