package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/termfx/pegasus/db"
	"github.com/termfx/pegasus/internal/config"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		database string
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded lint runs, or the findings of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database = database
			}
			if cfg.Database == "" {
				cfg.Database = defaultDatabase
			}
			debug := cfg.Debug || g.debug
			debugLogger(cmd.ErrOrStderr(), debug)("opening %s", cfg.Database)

			conn, err := db.Connect(cfg.Database, db.Options{Debug: debug, AuthToken: cfg.AuthToken})
			if err != nil {
				return err
			}
			store := db.NewStore(conn)
			defer store.Close()

			w := cmd.OutOrStdout()
			if len(args) == 1 {
				findings, err := store.Findings(args[0])
				if err != nil {
					return err
				}
				if len(findings) == 0 {
					fmt.Fprintf(w, "No findings recorded for run %s\n", args[0])
					return nil
				}
				for _, f := range findings {
					fmt.Fprintf(w, "%s:%d:%d: %s %s\n", bold(f.File), f.Line, f.Column, f.Message, faint(f.Rule))
				}
				return nil
			}

			runs, err := store.Runs(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded")
				return nil
			}
			for _, r := range runs {
				mode := "lint"
				if r.Fix {
					mode = "fix"
				}
				fmt.Fprintf(w, "%s  %s  %-4s  %s  files=%d problems=%d fixed=%d failed=%d\n",
					cyan(r.ID), r.StartedAt.Local().Format(time.DateTime), mode, r.Root,
					r.Files, r.Diagnostics, r.Fixed, r.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&database, "db", "", "History database path or libsql URL")
	return cmd
}
