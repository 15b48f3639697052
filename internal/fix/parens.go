package fix

import "github.com/termfx/pegasus/internal/ast"

// ParenthesizedTimes returns how many grouping paren pairs wrap n.
func ParenthesizedTimes(t *ast.Tree, n *ast.Node) int {
	return len(t.Parens(n))
}

// IsParenthesized reports whether n has at least one grouping paren pair.
func IsParenthesized(t *ast.Tree, n *ast.Node) bool {
	return ParenthesizedTimes(t, n) > 0
}

// ParenthesizedRange returns the range of n including every grouping paren
// pair around it.
func ParenthesizedRange(t *ast.Tree, n *ast.Node) ast.Range {
	parens := t.Parens(n)
	if len(parens) == 0 {
		return n.Range
	}
	return parens[len(parens)-1]
}

// ParenthesizedText returns the source of ParenthesizedRange.
func ParenthesizedText(t *ast.Tree, n *ast.Node) string {
	return t.Slice(ParenthesizedRange(t, n))
}

// RemoveMemberProperty removes the property access of member, keeping the
// object and its parens:
//
//	(( foo )).bar  ->  (( foo ))
func RemoveMemberProperty(t *ast.Tree, member *ast.Node) Edit {
	obj := t.Get(member.Object)
	return Fixer{}.Remove(ast.Range{
		Start: ParenthesizedRange(t, obj).End,
		End:   member.Range.End,
	})
}

// RemoveMethodCall removes a method call from its receiver:
//
//	(( (( foo )).bar ))()  ->  (( (( foo )) ))
//
// The callee of call must be a member expression.
func RemoveMethodCall(t *ast.Tree, call *ast.Node) []Edit {
	member := t.Get(call.Callee)
	return []Edit{
		RemoveMemberProperty(t, member),
		Fixer{}.Remove(ast.Range{
			Start: ParenthesizedRange(t, member).End,
			End:   call.Range.End,
		}),
	}
}

// ReplaceArgument replaces n and its grouping parens with text.
func ReplaceArgument(t *ast.Tree, n *ast.Node, text string) Edit {
	return Fixer{}.ReplaceRange(ParenthesizedRange(t, n), text)
}
