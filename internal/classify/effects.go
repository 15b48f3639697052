package classify

import (
	"errors"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/scope"
)

// ErrScopeMismatch is returned when a scope does not belong to the function
// it is paired with. It signals a broken integration, not bad input.
var ErrScopeMismatch = errors.New("scope does not belong to function")

// HasSideEffect reports whether evaluating n may have observable effects.
// Getters and implicit type conversions are not considered. Function and
// class bodies are not entered.
func HasSideEffect(t *ast.Tree, n *ast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.KindAssignment, ast.KindAwait, ast.KindCall, ast.KindImport,
		ast.KindNew, ast.KindUpdate, ast.KindYield, ast.KindTaggedTemplate:
		return true
	case ast.KindUnary:
		if n.Operator == "delete" {
			return true
		}
	case ast.KindFunctionExpression, ast.KindArrowFunction, ast.KindFunctionDeclaration:
		return false
	case ast.KindClass:
		return HasSideEffect(t, t.Get(n.Super))
	}
	for _, c := range t.Children(n) {
		if HasSideEffect(t, c) {
			return true
		}
	}
	return false
}

// IsFunctionSelfUsedInside reports whether a non-arrow function depends on
// its own invocation context: it reads this, the arguments object, or its
// own name. fnScope must be the scope acquired for fn.
func IsFunctionSelfUsedInside(t *ast.Tree, fn *ast.Node, fnScope *scope.Scope) (bool, error) {
	if fn == nil || fnScope == nil || fnScope.Block != fn || fnScope.Kind != scope.Function {
		return false, ErrScopeMismatch
	}
	if fn.Kind == ast.KindArrowFunction {
		return false, nil
	}
	if fnScope.ThisFound {
		return true, nil
	}
	if args := fnScope.LookupLocal("arguments"); args != nil && len(args.References) > 0 {
		return true, nil
	}
	if id := t.Get(fn.Ident); id != nil {
		if v := scope.FindVariableOf(fnScope, id); v != nil && len(v.References) > 0 {
			return true, nil
		}
	}
	return false, nil
}
