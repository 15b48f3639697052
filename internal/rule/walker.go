package rule

import (
	"fmt"
	"sort"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/scope"
	"github.com/termfx/pegasus/internal/typeinfo"
)

// File bundles everything rules may query about one source file.
type File struct {
	Name   string
	Tree   *ast.Tree
	Scopes *scope.Manager
	Types  *typeinfo.Helper
}

// NewFile analyzes scopes of tree and attaches the given oracle. A nil
// oracle falls back to the file-local Inferer, and Types().Checked() is
// false.
func NewFile(name string, tree *ast.Tree, oracle typeinfo.Oracle) *File {
	scopes := scope.Analyze(tree)
	types := typeinfo.NewHelper(oracle)
	if oracle == nil {
		types = typeinfo.NewLocalHelper(typeinfo.NewInferer(tree, scopes))
	}
	return &File{
		Name:   name,
		Tree:   tree,
		Scopes: scopes,
		Types:  types,
	}
}

type binding struct {
	ctx     *Context
	handler Handler
}

// Walker is a compiled listener table for one file.
type Walker struct {
	file     *File
	contexts []*Context
	enter    map[ast.Kind][]binding
	exit     map[ast.Kind][]binding
}

// NewWalker creates a context per rule and compiles their listeners.
func NewWalker(file *File, rules ...*Rule) (*Walker, error) {
	w := &Walker{
		file:  file,
		enter: make(map[ast.Kind][]binding),
		exit:  make(map[ast.Kind][]binding),
	}
	for _, r := range rules {
		ctx := &Context{Rule: r, Filename: file.Name, file: file, listeners: Listeners{}}
		returned := r.Create(ctx)
		if err := w.register(ctx, returned); err != nil {
			return nil, err
		}
		if err := w.register(ctx, ctx.listeners); err != nil {
			return nil, err
		}
		w.contexts = append(w.contexts, ctx)
	}
	return w, nil
}

func (w *Walker) register(ctx *Context, l Listeners) error {
	// map order is random; sort so handler order is stable
	selectors := make([]string, 0, len(l))
	for s := range l {
		selectors = append(selectors, s)
	}
	sort.Strings(selectors)

	for _, sel := range selectors {
		kind, exit, err := parseSelector(sel)
		if err != nil {
			return fmt.Errorf("rule %s: %w", ctx.Rule.Name, err)
		}
		table := w.enter
		if exit {
			table = w.exit
		}
		for _, h := range l[sel] {
			table[kind] = append(table[kind], binding{ctx: ctx, handler: h})
		}
	}
	return nil
}

// Walk visits the tree once and returns the diagnostics of every rule
// ordered by position.
func (w *Walker) Walk() ([]Diagnostic, error) {
	var walkErr error
	tree := w.file.Tree
	dispatch := func(table map[ast.Kind][]binding, n *ast.Node) {
		for _, b := range table[n.Kind] {
			if err := b.handler(n); err != nil {
				walkErr = fmt.Errorf("%s: rule %s at %s: %w",
					w.file.Name, b.ctx.Rule.Name, position(tree, n.Range.Start), err)
				return
			}
		}
	}
	tree.Inspect(tree.Root(), func(n *ast.Node) bool {
		if walkErr != nil {
			return false
		}
		dispatch(w.enter, n)
		return walkErr == nil
	}, func(n *ast.Node) {
		if walkErr == nil {
			dispatch(w.exit, n)
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	var out []Diagnostic
	for _, ctx := range w.contexts {
		out = append(out, ctx.diagnostics...)
	}
	SortDiagnostics(out)
	return out, nil
}

// SortDiagnostics orders by start offset, then end offset. Ties keep their
// order.
func SortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Range.Start != ds[j].Range.Start {
			return ds[i].Range.Start < ds[j].Range.Start
		}
		return ds[i].Range.End < ds[j].Range.End
	})
}

// Run runs rules over file.
func Run(file *File, rules ...*Rule) ([]Diagnostic, error) {
	w, err := NewWalker(file, rules...)
	if err != nil {
		return nil, err
	}
	return w.Walk()
}
