package rules

import (
	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/classify"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/match"
	"github.com/termfx/pegasus/internal/rule"
)

var (
	findCall     = match.MethodCall("find", "findLast").MinArgs(1).MaxArgs(2).NotOptional()
	filterCall   = match.MethodCall("filter").NotOptional()
	lengthAccess = match.Member("length").WithOptional(match.False)
)

// PreferArraySome suggests .some(…) where the element found by .find(…) is
// only tested for existence, and fixes .filter(…).length > 0.
var PreferArraySome = register(&rule.Rule{
	Name: "prefer-array-some",
	Meta: rule.Meta{
		Type:                 rule.TypeSuggestion,
		Description:          "Prefer `.some(…)` over `.filter(…).length` check and `.{find,findLast}(…)`.",
		RequiresTypeChecking: true,
		Fixable:              true,
		HasSuggestions:       true,
		Messages: map[string]string{
			"some":           "Prefer `.some(…)` over `.{{method}}(…)`.",
			"someSuggestion": "Replace `.{{method}}(…)` with `.some(…)`.",
			"filter":         "Prefer `.some(…)` over non-zero length check from `.filter(…)`.",
		},
	},
	Create: func(ctx *rule.Context) rule.Listeners {
		return rule.Listeners{
			"CallExpression":   {func(n *ast.Node) error { return checkFind(ctx, n) }},
			"BinaryExpression": {func(n *ast.Node) error { return checkFilterLength(ctx, n) }},
		}
	},
})

// isCheckingUndefined reports whether call is the left side of a comparison
// with undefined, or a loose comparison with null. Yoda forms are ignored.
func isCheckingUndefined(t *ast.Tree, call *ast.Node) bool {
	p := t.Parent(call)
	if p == nil || p.Kind != ast.KindBinary || p.Left != call.ID {
		return false
	}
	right := t.Get(p.Right)
	switch p.Operator {
	case "==", "!=":
		return match.IsUndefined(right) || match.IsNullLiteral(right)
	case "===", "!==":
		return match.IsUndefined(right)
	}
	return false
}

func checkFind(ctx *rule.Context, call *ast.Node) error {
	t := ctx.Source()
	if !match.IsMethodCall(t, call, findCall) {
		return nil
	}
	compare := isCheckingUndefined(t, call)
	if !compare && !classify.IsBooleanNode(t, call) {
		return nil
	}
	callee := t.Get(call.Callee)
	if !ctx.Types().IsArrayOrUnionOfArrays(t.Get(callee.Object)) {
		return nil
	}

	method := t.Get(callee.Property)
	data := map[string]string{"method": method.Name}
	return ctx.Report(rule.Report{
		Node:      method,
		MessageID: "some",
		Data:      data,
		Suggestions: []rule.Suggestion{{
			MessageID: "someSuggestion",
			Data:      data,
			Fix: func(b *fix.Builder) error {
				b.Add(b.ReplaceText(method, "some"))
				if !compare {
					return nil
				}
				cmp := t.Parent(call)
				callRange := fix.ParenthesizedRange(t, call)
				b.Add(b.Remove(ast.Range{Start: callRange.End, End: cmp.Range.End}))
				if cmp.Operator == "==" || cmp.Operator == "===" {
					b.Add(b.InsertBefore(callRange, "!"))
				}
				return nil
			},
		}},
	})
}

// checkFilterLength matches .filter(…).length > 0 and !== 0 only; other
// spellings are left to an explicit length check convention.
func checkFilterLength(ctx *rule.Context, bin *ast.Node) error {
	t := ctx.Source()
	if bin.Operator != ">" && bin.Operator != "!==" {
		return nil
	}
	if !match.IsRaw(t.Get(bin.Right), "0") {
		return nil
	}
	length := t.Get(bin.Left)
	if !match.IsMember(t, length, lengthAccess) {
		return nil
	}
	filter := t.Get(length.Object)
	if !match.IsMethodCall(t, filter, filterCall) {
		return nil
	}
	if len(filter.Arguments) == 0 || match.IsValueNotFunction(t, t.Get(filter.Arguments[0])) {
		return nil
	}

	property := t.Get(t.Get(filter.Callee).Property)
	return ctx.Report(rule.Report{
		Node:      property,
		MessageID: "filter",
		Fix: func(b *fix.Builder) error {
			b.Add(
				b.ReplaceText(property, "some"),
				// (( (( array.filter() )).length )) > (( 0 ))
				//                        ^^^^^^^
				fix.RemoveMemberProperty(t, length),
				// (( (( array.filter() )).length )) > (( 0 ))
				//                                  ^^^^^^^^^^
				b.Remove(ast.Range{Start: fix.ParenthesizedRange(t, length).End, End: bin.Range.End}),
			)
			return nil
		},
	})
}
