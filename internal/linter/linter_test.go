package linter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/classify"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/rules"
	"github.com/termfx/pegasus/internal/typeinfo"
)

func newLinter(t *testing.T, opts Options) *Linter {
	t.Helper()
	if opts.Rules == nil {
		opts.Rules = rules.All()
	}
	l, err := New(opts)
	require.NoError(t, err)
	return l
}

func TestNew(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoRules)

	_, err = New(Options{Rules: rules.All(), MaxPasses: -1})
	assert.ErrorContains(t, err, "max passes")

	l := newLinter(t, Options{})
	assert.Equal(t, DefaultMaxPasses, l.opts.MaxPasses)
	assert.Equal(t, 1, l.opts.Workers)
	assert.Len(t, l.Rules(), 4)
}

func TestLintSource(t *testing.T) {
	l := newLinter(t, Options{})
	src := []byte("const xs = [1, 2];\nconst ys = xs.map(x => [x]).flat();\n\"abc\".substr(1);\n")
	res, err := l.LintSource(context.Background(), "a.js", src, ast.JavaScript)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "prefer-array-flat-map", res.Diagnostics[0].Rule)
	assert.Equal(t, rule.Position{Line: 2, Column: 15}, res.Diagnostics[0].Start)
	assert.Equal(t, "prefer-string-slice", res.Diagnostics[1].Rule)
	assert.False(t, res.Changed())
	assert.Empty(t, res.SyntaxErrors)
}

func TestFixMultiPass(t *testing.T) {
	l := newLinter(t, Options{})
	// the inner substr's fix lies within the outer fix span
	src := []byte(`foo.substring(bar.substr(1));`)
	res, err := l.Fix(context.Background(), "a.js", src, ast.JavaScript)
	require.NoError(t, err)

	assert.Equal(t, `foo.slice(Math.max(0, bar.slice(1)));`, string(res.Output))
	assert.Equal(t, 2, res.Passes)
	assert.Equal(t, 2, res.Fixed)
	assert.Empty(t, res.Diagnostics)
	assert.True(t, res.Changed())

	diff, err := res.Diff()
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/a.js")
	assert.Contains(t, diff, `+foo.slice(Math.max(0, bar.slice(1)));`)
}

func TestFixMaxPasses(t *testing.T) {
	l := newLinter(t, Options{MaxPasses: 1})
	src := []byte(`foo.substring(bar.substr(1));`)
	res, err := l.Fix(context.Background(), "a.js", src, ast.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, `foo.slice(Math.max(0, bar.substr(1)));`, string(res.Output))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "substr", res.Diagnostics[0].MessageID)
}

func TestFixKeepsUnfixable(t *testing.T) {
	l := newLinter(t, Options{})
	src := []byte("foo.substr(start, length);\nconst xs = [];\nif (xs.find(fn)) {}\n")
	res, err := l.Fix(context.Background(), "a.ts", src, ast.TypeScript)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, 0, res.Passes)
	require.Len(t, res.Diagnostics, 2)
	assert.NotEmpty(t, res.Diagnostics[1].Suggestions)
}

func TestFixSkipsSyntaxErrors(t *testing.T) {
	var logs []string
	l := newLinter(t, Options{Debugf: func(format string, args ...any) {
		logs = append(logs, format)
	}})
	src := []byte("\"abc\".substr(1);\nconst = ;\n")
	res, err := l.Fix(context.Background(), "a.js", src, ast.JavaScript)
	require.NoError(t, err)
	assert.NotEmpty(t, res.SyntaxErrors)
	assert.False(t, res.Changed())
	assert.NotEmpty(t, logs)
}

func TestSelectFixes(t *testing.T) {
	edit := func(start, end int) []fix.Edit {
		return []fix.Edit{{Range: ast.Range{Start: start, End: end}, Text: "x"}}
	}
	diags := []rule.Diagnostic{
		{Fix: edit(0, 5)},
		{Fix: edit(3, 4)},
		{},
		{Fix: edit(5, 6)},
		{Fix: edit(10, 12)},
	}
	edits, applied := SelectFixes(diags)
	assert.Equal(t, 3, applied)
	require.Len(t, edits, 3)
	assert.Equal(t, 10, edits[2].Range.Start)
}

var errBoom = errors.New("boom")

func TestLintSourceAbortsOnRuleError(t *testing.T) {
	failing := &rule.Rule{Name: "failing", Create: func(*rule.Context) rule.Listeners {
		return rule.Listeners{"Program": {func(*ast.Node) error {
			return classify.ErrScopeMismatch
		}}}
	}}
	l := newLinter(t, Options{Rules: []*rule.Rule{failing}})
	_, err := l.LintSource(context.Background(), "a.js", []byte("a;"), ast.JavaScript)
	assert.ErrorIs(t, err, classify.ErrScopeMismatch)
}

type stubOracle struct{}

func (stubOracle) ConstrainedType(*ast.Node) (*typeinfo.Type, error) { return nil, errBoom }

func TestOracleOption(t *testing.T) {
	called := 0
	l := newLinter(t, Options{
		Rules: []*rule.Rule{rules.PreferArraySome},
		Oracle: func(*ast.Tree) typeinfo.Oracle {
			called++
			return stubOracle{}
		},
	})
	res, err := l.LintSource(context.Background(), "a.js", []byte("const xs = []; if (xs.find(fn)) {}"), ast.JavaScript)
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	assert.Empty(t, res.Diagnostics)
}

func TestLintFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	paths := []string{
		write("a.js", `"abc".substr(1);`),
		write("b.ts", "const n: number = 1;\n"),
		write("c.txt", "plain"),
		filepath.Join(dir, "missing.js"),
	}

	l := newLinter(t, Options{Workers: 3})
	results, err := l.LintFiles(context.Background(), paths, true)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, `"abc".slice(1);`, string(results[0].Output))
	assert.NoError(t, results[0].Err)
	assert.False(t, results[1].Changed())
	assert.ErrorIs(t, results[2].Err, ast.ErrUnsupportedLanguage)
	assert.True(t, errors.Is(results[3].Err, os.ErrNotExist))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
}

func TestLintFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newLinter(t, Options{})
	_, err := l.LintFiles(ctx, []string{"a.js"}, false)
	assert.ErrorIs(t, err, context.Canceled)
}
