// Package linter runs rules over whole files: parse, analyze, report and
// optionally fix in several passes.
package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/typeinfo"
)

// DefaultMaxPasses bounds the fix loop.
const DefaultMaxPasses = 10

// ErrNoRules is returned by New when no rule is enabled.
var ErrNoRules = errors.New("no rules enabled")

// Options configures a Linter.
type Options struct {
	Rules     []*rule.Rule
	MaxPasses int
	Workers   int

	// Oracle builds the type oracle of a file. Nil uses the file-local
	// inferer.
	Oracle func(*ast.Tree) typeinfo.Oracle

	// Debugf receives debug messages. Nil discards them.
	Debugf func(format string, args ...any)
}

// Result is the outcome of linting one file. When fixing, Diagnostics
// describe Output, the source after the last applied pass.
type Result struct {
	Path         string
	Language     ast.Language
	Source       []byte
	Output       []byte
	Diagnostics  []rule.Diagnostic
	SyntaxErrors []ast.SyntaxError
	Passes       int
	Fixed        int
	Err          error
}

// Changed reports whether fixing modified the source.
func (r *Result) Changed() bool { return !bytes.Equal(r.Source, r.Output) }

// Diff returns a unified diff from Source to Output.
func (r *Result) Diff() (string, error) { return fix.Diff(r.Path, string(r.Source), string(r.Output)) }

// Linter runs a fixed set of rules.
type Linter struct {
	opts   Options
	debugf func(format string, args ...any)
}

// New validates opts and fills in defaults.
func New(opts Options) (*Linter, error) {
	if len(opts.Rules) == 0 {
		return nil, ErrNoRules
	}
	if opts.MaxPasses < 0 {
		return nil, fmt.Errorf("max passes must be positive, got %d", opts.MaxPasses)
	}
	if opts.MaxPasses == 0 {
		opts.MaxPasses = DefaultMaxPasses
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	l := &Linter{opts: opts, debugf: opts.Debugf}
	if l.debugf == nil {
		l.debugf = func(string, ...any) {}
	}
	return l, nil
}

// Rules returns the enabled rules.
func (l *Linter) Rules() []*rule.Rule { return l.opts.Rules }

func (l *Linter) analyze(ctx context.Context, path string, src []byte, lang ast.Language) (*ast.Tree, []rule.Diagnostic, error) {
	tree, err := ast.Parse(ctx, src, lang)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	var oracle typeinfo.Oracle
	if l.opts.Oracle != nil {
		oracle = l.opts.Oracle(tree)
	}
	diags, err := rule.Run(rule.NewFile(path, tree, oracle), l.opts.Rules...)
	if err != nil {
		return nil, nil, err
	}
	return tree, diags, nil
}

// LintSource reports on src without fixing it.
func (l *Linter) LintSource(ctx context.Context, path string, src []byte, lang ast.Language) (*Result, error) {
	tree, diags, err := l.analyze(ctx, path, src, lang)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:         path,
		Language:     lang,
		Source:       src,
		Output:       src,
		Diagnostics:  diags,
		SyntaxErrors: tree.Errors,
	}, nil
}

// Fix applies fixes to src until none apply or the pass limit is reached.
// Sources with syntax errors are reported on but never fixed, and a pass
// whose output no longer parses is discarded.
func (l *Linter) Fix(ctx context.Context, path string, src []byte, lang ast.Language) (*Result, error) {
	res, err := l.LintSource(ctx, path, src, lang)
	if err != nil {
		return nil, err
	}
	if len(res.SyntaxErrors) > 0 {
		l.debugf("%s: %d syntax errors, not fixing", path, len(res.SyntaxErrors))
		return res, nil
	}

	for res.Passes < l.opts.MaxPasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edits, applied := SelectFixes(res.Diagnostics)
		if applied == 0 {
			break
		}
		out, err := fix.Apply(res.Output, edits)
		if err != nil {
			return nil, fmt.Errorf("%s: pass %d: %w", path, res.Passes+1, err)
		}
		tree, diags, err := l.analyze(ctx, path, out, lang)
		if err != nil {
			return nil, err
		}
		if len(tree.Errors) > 0 {
			l.debugf("%s: pass %d produced %v, discarding it", path, res.Passes+1, tree.Errors[0])
			break
		}
		res.Passes++
		res.Fixed += applied
		res.Output = out
		res.Diagnostics = diags
		l.debugf("%s: pass %d applied %d fixes", path, res.Passes, applied)
	}
	return res, nil
}

// SelectFixes picks the fixes of one pass. Diagnostics are visited in
// document order and a fix is skipped when it overlaps one already taken.
func SelectFixes(diags []rule.Diagnostic) ([]fix.Edit, int) {
	var edits []fix.Edit
	applied := 0
	last := -1
	for _, d := range diags {
		if !d.Fixable() {
			continue
		}
		span := fix.Span(d.Fix)
		if span.Start < last {
			continue
		}
		edits = append(edits, d.Fix...)
		last = span.End
		applied++
	}
	return edits, applied
}

// LintFile reads path and lints it, fixing when fixing is set.
func (l *Linter) LintFile(ctx context.Context, path string, fixing bool) (*Result, error) {
	lang, ok := ast.LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ast.ErrUnsupportedLanguage)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if fixing {
		return l.Fix(ctx, path, src, lang)
	}
	return l.LintSource(ctx, path, src, lang)
}

// LintFiles lints paths concurrently. Per-file failures are recorded in
// Result.Err; the returned error is only set when ctx is cancelled. Results
// keep the order of paths.
func (l *Linter) LintFiles(ctx context.Context, paths []string, fixing bool) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := l.LintFile(gctx, path, fixing)
			if err != nil {
				l.debugf("%s: %v", path, err)
				res = &Result{Path: path, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
