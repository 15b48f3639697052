package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/rules"
)

func newRulesCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, r := range rules.All() {
				fmt.Fprintf(w, "%s %s\n", bold(r.Name), faint(ruleTags(r)))
				fmt.Fprintf(w, "  %s\n", r.Meta.Description)
				if verbose {
					fmt.Fprintf(w, "  %s\n", rules.DocsURL(r.Name))
					ids := make([]string, 0, len(r.Meta.Messages))
					for id := range r.Meta.Messages {
						ids = append(ids, id)
					}
					sort.Strings(ids)
					for _, id := range ids {
						fmt.Fprintf(w, "    %s: %s\n", cyan(id), r.Meta.Messages[id])
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show documentation links and messages")
	return cmd
}

func ruleTags(r *rule.Rule) string {
	tags := []string{string(r.Meta.Type)}
	if r.Meta.Fixable {
		tags = append(tags, "fixable")
	}
	if r.Meta.HasSuggestions {
		tags = append(tags, "suggestions")
	}
	if r.Meta.RequiresTypeChecking {
		tags = append(tags, "types")
	}
	return "(" + strings.Join(tags, ", ") + ")"
}
