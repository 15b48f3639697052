// Package rule defines lint rules and runs them over a parsed file.
//
// A rule is a Create function registering node listeners. The walker visits
// every node once in document order and calls the listeners registered for
// its kind. Listeners report problems through their Context.
package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/scope"
	"github.com/termfx/pegasus/internal/typeinfo"
)

// Type classifies what a rule is about.
type Type string

const (
	TypeProblem    Type = "problem"
	TypeSuggestion Type = "suggestion"
	TypeLayout     Type = "layout"
)

// Meta describes a rule to the harness.
type Meta struct {
	Type                 Type
	Description          string
	RequiresTypeChecking bool
	Fixable              bool
	HasSuggestions       bool
	// Schema lists accepted options. Every built-in rule is parameterless.
	Schema   []string
	Messages map[string]string
}

// Rule is a named detector.
type Rule struct {
	Name   string
	Meta   Meta
	Create func(ctx *Context) Listeners
}

// Handler is called for a matching node. A non-nil error aborts analysis
// of the whole file.
type Handler func(n *ast.Node) error

// Listeners maps a selector to its handlers. A selector is a node kind name
// such as "CallExpression", optionally suffixed with ":exit".
type Listeners map[string][]Handler

// On appends h to the enter handlers of selector.
func (l Listeners) On(selector string, h Handler) {
	l[selector] = append(l[selector], h)
}

// OnExit appends h to the exit handlers of selector.
func (l Listeners) OnExit(selector string, h Handler) {
	l[selector+exitSuffix] = append(l[selector+exitSuffix], h)
}

const exitSuffix = ":exit"

func parseSelector(selector string) (kind ast.Kind, exit bool, err error) {
	name, exit := strings.CutSuffix(selector, exitSuffix)
	kind, ok := ast.KindByName(name)
	if !ok {
		return 0, false, fmt.Errorf("unknown selector %q", selector)
	}
	return kind, exit, nil
}

// FixFunc queues the edits of one fix. Returning fix.ErrAbort discards them.
type FixFunc func(b *fix.Builder) error

// Suggestion is a fix the user has to pick explicitly.
type Suggestion struct {
	MessageID string
	Data      map[string]string
	Fix       FixFunc
}

// Report is what a listener hands to Context.Report.
type Report struct {
	Node *ast.Node
	// Range overrides the node range when set.
	Range       *ast.Range
	MessageID   string
	Data        map[string]string
	Fix         FixFunc
	Suggestions []Suggestion
}

// Context is the per-file, per-rule view given to Create.
type Context struct {
	Rule     *Rule
	Filename string

	file        *File
	listeners   Listeners
	diagnostics []Diagnostic
}

// Source returns the parsed file.
func (c *Context) Source() *ast.Tree { return c.file.Tree }

// Scopes returns the scope manager of the file.
func (c *Context) Scopes() *scope.Manager { return c.file.Scopes }

// Types returns the type helper. It answers "unknown" when no oracle is
// attached.
func (c *Context) Types() *typeinfo.Helper { return c.file.Types }

// On subscribes h alongside the listeners returned from Create.
func (c *Context) On(selector string, h Handler) { c.listeners.On(selector, h) }

// OnExit subscribes h to the exit of selector.
func (c *Context) OnExit(selector string, h Handler) { c.listeners.OnExit(selector, h) }

// Report records a problem. It fails on undeclared message ids, on fixes
// from rules not declared fixable and on edits that overlap.
func (c *Context) Report(r Report) error {
	meta := c.Rule.Meta
	tmpl, ok := meta.Messages[r.MessageID]
	if !ok {
		return fmt.Errorf("rule %s: unknown message id %q", c.Rule.Name, r.MessageID)
	}
	if r.Fix != nil && !meta.Fixable {
		return fmt.Errorf("rule %s: fix reported but rule is not fixable", c.Rule.Name)
	}
	if len(r.Suggestions) > 0 && !meta.HasSuggestions {
		return fmt.Errorf("rule %s: suggestions reported but rule declares none", c.Rule.Name)
	}

	var rng ast.Range
	switch {
	case r.Range != nil:
		rng = *r.Range
	case r.Node != nil:
		rng = r.Node.Range
	default:
		return fmt.Errorf("rule %s: report without node or range", c.Rule.Name)
	}

	tree := c.Source()
	d := Diagnostic{
		Rule:      c.Rule.Name,
		MessageID: r.MessageID,
		Message:   Interpolate(tmpl, r.Data),
		Data:      r.Data,
		Range:     rng,
		Start:     position(tree, rng.Start),
		End:       position(tree, rng.End),
	}

	if r.Fix != nil {
		edits, err := c.build(r.Fix)
		if err != nil {
			return err
		}
		d.Fix = edits
	}
	for _, s := range r.Suggestions {
		stmpl, ok := meta.Messages[s.MessageID]
		if !ok {
			return fmt.Errorf("rule %s: unknown suggestion message id %q", c.Rule.Name, s.MessageID)
		}
		edits, err := c.build(s.Fix)
		if err != nil {
			return err
		}
		if len(edits) == 0 {
			continue
		}
		d.Suggestions = append(d.Suggestions, SuggestionResult{
			MessageID: s.MessageID,
			Message:   Interpolate(stmpl, s.Data),
			Fix:       edits,
		})
	}

	c.diagnostics = append(c.diagnostics, d)
	return nil
}

func (c *Context) build(fn FixFunc) ([]fix.Edit, error) {
	res, err := fix.Build(c.Source(), fn)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", c.Rule.Name, err)
	}
	return res.Edits(), nil
}

var placeholder = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Interpolate fills {{name}} placeholders from data. Unknown names are left
// in place.
func Interpolate(tmpl string, data map[string]string) string {
	if len(data) == 0 {
		return tmpl
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}
