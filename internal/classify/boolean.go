package classify

import (
	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/match"
)

// IsLogicNot reports whether n is a ! expression.
func IsLogicNot(n *ast.Node) bool {
	return n != nil && n.Kind == ast.KindUnary && n.Operator == "!"
}

// IsLogicNotArgument reports whether n is the operand of a ! expression.
func IsLogicNotArgument(t *ast.Tree, n *ast.Node) bool {
	p := t.Parent(n)
	return n != nil && IsLogicNot(p) && p.Argument == n.ID
}

// IsBooleanCall reports whether n is Boolean(x).
func IsBooleanCall(t *ast.Tree, n *ast.Node) bool {
	return match.IsCall(t, n, match.Call("Boolean").Args(1))
}

// IsBooleanCallArgument reports whether n is the argument of Boolean(x).
func IsBooleanCallArgument(t *ast.Tree, n *ast.Node) bool {
	p := t.Parent(n)
	return n != nil && IsBooleanCall(t, p) && p.Arguments[0] == n.ID
}

// IsBooleanNode reports whether n is only consumed for its truthiness.
func IsBooleanNode(t *ast.Tree, n *ast.Node) bool {
	if n == nil {
		return false
	}
	if IsLogicNot(n) || IsLogicNotArgument(t, n) || IsBooleanCall(t, n) || IsBooleanCallArgument(t, n) {
		return true
	}

	p := t.Parent(n)
	if p == nil {
		return false
	}
	switch p.Kind {
	case ast.KindIf, ast.KindConditional, ast.KindWhile, ast.KindDoWhile, ast.KindFor:
		if p.Test == n.ID {
			return true
		}
	}
	if match.IsLogical(p) {
		return IsBooleanNode(t, p)
	}
	return false
}

// BooleanAncestor climbs through ! and Boolean() wrappers. negative reports
// whether an odd number of negations was passed.
func BooleanAncestor(t *ast.Tree, n *ast.Node) (ancestor *ast.Node, negative bool) {
	for {
		switch {
		case IsLogicNotArgument(t, n):
			negative = !negative
			n = t.Parent(n)
		case IsBooleanCallArgument(t, n):
			n = t.Parent(n)
		default:
			return n, negative
		}
	}
}
