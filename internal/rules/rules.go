// Package rules holds the built-in lint rules.
package rules

import (
	"sort"

	"github.com/termfx/pegasus/internal/rule"
)

const docsURL = "https://github.com/termfx/pegasus/blob/main/docs/rules/"

// DocsURL returns the documentation link of a rule.
func DocsURL(name string) string { return docsURL + name + ".md" }

var registry = map[string]*rule.Rule{}

func register(r *rule.Rule) *rule.Rule {
	if _, dup := registry[r.Name]; dup {
		panic("rules: duplicate rule " + r.Name)
	}
	registry[r.Name] = r
	return r
}

// All returns every built-in rule sorted by name.
func All() []*rule.Rule {
	out := make([]*rule.Rule, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the names of every built-in rule, sorted.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	return names
}

// Lookup returns the rule called name.
func Lookup(name string) (*rule.Rule, bool) {
	r, ok := registry[name]
	return r, ok
}
