package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/termfx/pegasus/core"
	"github.com/termfx/pegasus/db"
	"github.com/termfx/pegasus/internal/config"
	"github.com/termfx/pegasus/internal/linter"
)

type lintFlags struct {
	fix       bool
	diff      bool
	json      bool
	record    bool
	rules     []string
	disable   []string
	include   []string
	exclude   []string
	database  string
	workers   int
	maxPasses int
}

func newLintCmd(g *globalFlags) *cobra.Command {
	f := &lintFlags{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Report problems and optionally fix them",
		Long: "Lint JavaScript and TypeScript files under the given paths (default: current directory).\n" +
			"Settings are read from " + config.FileName + ", .env and PEGASUS_* variables; flags override them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, g, f, args)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&f.fix, "fix", false, "Write fixes to disk")
	flags.BoolVarP(&f.diff, "diff", "D", false, "Show a unified diff of the fixes")
	flags.BoolVarP(&f.json, "json", "j", false, "Output results in JSON format")
	flags.BoolVar(&f.record, "record", false, "Record the run in the history database")
	flags.StringSliceVarP(&f.rules, "rule", "r", nil, "Enable only these rules (repeatable)")
	flags.StringSliceVar(&f.disable, "disable", nil, "Disable these rules (repeatable)")
	flags.StringSliceVar(&f.include, "include", nil, "Include file patterns (glob)")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "Exclude file patterns (glob)")
	flags.StringVar(&f.database, "db", "", "History database path or libsql URL")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Number of concurrent workers")
	flags.IntVar(&f.maxPasses, "max-passes", 0, "Maximum fix passes per file")
	return cmd
}

// resolveConfig loads the project configuration and applies the flags the
// user set explicitly.
func resolveConfig(cmd *cobra.Command, g *globalFlags, f *lintFlags) (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("rule") {
		cfg.Rules = f.rules
	}
	if flags.Changed("disable") {
		cfg.Disable = append(cfg.Disable, f.disable...)
	}
	if flags.Changed("include") {
		cfg.Include = f.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, f.exclude...)
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("max-passes") {
		cfg.MaxPasses = f.maxPasses
	}
	if flags.Changed("db") {
		cfg.Database = f.database
	}
	cfg.Debug = cfg.Debug || g.debug
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLint(cmd *cobra.Command, g *globalFlags, f *lintFlags, args []string) error {
	cfg, err := resolveConfig(cmd, g, f)
	if err != nil {
		return err
	}
	debugf := debugLogger(cmd.ErrOrStderr(), cfg.Debug)
	ctx := cmd.Context()

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	paths, err := core.NewFileWalker().Collect(ctx, roots, cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}
	debugf("discovered %d files under %v", len(paths), roots)

	enabled := cfg.EnabledRules()
	l, err := linter.New(linter.Options{
		Rules:     enabled,
		MaxPasses: cfg.MaxPasses,
		Workers:   cfg.Workers,
		Debugf:    debugf,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	// fixes are computed for --diff too, but only written with --fix
	results, err := l.LintFiles(ctx, paths, f.fix || f.diff)
	if err != nil {
		return err
	}

	if f.fix {
		if err := writeFixes(results, debugf); err != nil {
			return err
		}
	}

	p := &printer{w: cmd.OutOrStdout(), fixing: f.fix}
	if f.json {
		if err := p.writeJSON(results); err != nil {
			return err
		}
	} else {
		if f.diff {
			if err := p.diffs(results); err != nil {
				return err
			}
		}
		p.text(results)
	}

	if f.record {
		names := make([]string, len(enabled))
		for i, r := range enabled {
			names[i] = r.Name
		}
		if err := record(cfg, roots, names, f.fix, started, results, debugf); err != nil {
			return err
		}
	}

	if s := summarize(results); s.problems > 0 || s.failed > 0 {
		return errProblems
	}
	return nil
}

// writeFixes writes every changed file in one transaction. Any failure
// restores the files already written.
func writeFixes(results []*linter.Result, debugf func(string, ...any)) error {
	aw := core.NewAtomicWriter()
	defer aw.Cleanup()

	tx := aw.Begin()
	for _, res := range results {
		if res.Err != nil || !res.Changed() {
			continue
		}
		if err := tx.Write(res.Path, res.Source, res.Output); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
			return err
		}
	}
	debugf("transaction %s wrote %d files", tx.ID, len(tx.Files()))
	return tx.Commit()
}

func record(cfg *config.Config, roots, rules []string, fixing bool, started time.Time, results []*linter.Result, debugf func(string, ...any)) error {
	dsn := cfg.Database
	if dsn == "" {
		dsn = defaultDatabase
	}
	conn, err := db.Connect(dsn, db.Options{Debug: cfg.Debug, AuthToken: cfg.AuthToken})
	if err != nil {
		return err
	}
	store := db.NewStore(conn)
	defer store.Close()

	run, err := db.NewRun(strings.Join(roots, ","), rules, fixing, started, results)
	if err != nil {
		return err
	}
	if err := store.SaveRun(run); err != nil {
		return err
	}
	debugf("recorded run %s in %s", run.ID, dsn)
	return nil
}
