// Command pegasus lints JavaScript and TypeScript sources and applies the
// fixes of its rules.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// defaultDatabase stores run history when no database is configured.
const defaultDatabase = ".pegasus/history.db"

// errProblems makes lint exit with status 1 without printing an error.
var errProblems = errors.New("problems found")

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

type globalFlags struct {
	debug   bool
	noColor bool
}

// debugLogger returns a printf writing [DEBUG] lines to w, or a no-op.
func debugLogger(w io.Writer, enabled bool) func(format string, args ...any) {
	if !enabled {
		return func(string, ...any) {}
	}
	return func(format string, args ...any) {
		fmt.Fprintf(w, "[DEBUG] "+format+"\n", args...)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "pegasus",
		Short:         "Lint and fix JavaScript and TypeScript array and string idioms",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newLintCmd(g), newRulesCmd(), newHistoryCmd(g), newMCPCmd(g))
	return root
}

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
