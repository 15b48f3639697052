package rules

import (
	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/classify"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/match"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/staticvalue"
)

var substrCall = match.MethodCall("substr", "substring")

// PreferStringSlice rewrites String#substr() and String#substring() calls to
// String#slice(), adjusting arguments where their semantics differ.
var PreferStringSlice = register(&rule.Rule{
	Name: "prefer-string-slice",
	Meta: rule.Meta{
		Type:                 rule.TypeSuggestion,
		Description:          "Prefer `String#slice()` over `String#substr()` and `String#substring()`.",
		RequiresTypeChecking: true,
		Fixable:              true,
		Messages: map[string]string{
			"substr":    "Prefer `String#slice()` over `String#substr()`.",
			"substring": "Prefer `String#slice()` over `String#substring()`.",
		},
	},
	Create: func(ctx *rule.Context) rule.Listeners {
		return rule.Listeners{
			"CallExpression": {func(n *ast.Node) error { return checkSubstr(ctx, n) }},
		}
	},
})

func isExactNumber(n *ast.Node) bool {
	return match.IsNumberLiteral(n) && !n.Lit.Inexact
}

// numericValue reads a number literal, possibly negated.
func numericValue(t *ast.Tree, n *ast.Node) (float64, bool) {
	switch {
	case isExactNumber(n):
		return n.Lit.Num, true
	case n != nil && n.Kind == ast.KindUnary && n.Operator == "-":
		v, ok := numericValue(t, t.Get(n.Argument))
		return -v, ok
	}
	return 0, false
}

// isLengthAccess matches x.length, optional access included.
func isLengthAccess(t *ast.Tree, n *ast.Node) bool {
	return match.IsMember(t, n, match.Member("length"))
}

// clamp mirrors Math.max(0, v).
func clamp(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

func formatNumber(v float64) string { return staticvalue.NumberToString(v) }

func checkSubstr(ctx *rule.Context, call *ast.Node) error {
	t := ctx.Source()
	if !match.IsMethodCall(t, call, substrCall) {
		return nil
	}
	property := t.Get(t.Get(call.Callee).Property)
	method := property.Name

	return ctx.Report(rule.Report{
		Node:      call,
		MessageID: method,
		Fix: func(b *fix.Builder) error {
			b.Add(b.ReplaceText(property, "slice"))
			if len(call.Arguments) == 0 {
				return nil
			}
			if len(call.Arguments) > 2 {
				return fix.ErrAbort
			}
			for _, id := range call.Arguments {
				if t.Get(id).Kind == ast.KindSpread {
					return fix.ErrAbort
				}
			}
			if method == "substr" {
				return fixSubstrArguments(ctx, b, call)
			}
			return fixSubstringArguments(ctx, b, call)
		},
	})
}

// fixSubstrArguments turns substr(start, length) into slice(start, end).
func fixSubstrArguments(ctx *rule.Context, b *fix.Builder, call *ast.Node) error {
	if len(call.Arguments) < 2 {
		return nil
	}
	t := ctx.Source()
	first, second := t.Get(call.Arguments[0]), t.Get(call.Arguments[1])
	secondRange := fix.ParenthesizedRange(t, second)

	if v, ok := staticvalue.Evaluate(t, ctx.Scopes(), first); ok && v.IsNumber() && v.Num == 0 {
		if match.IsNumberLiteral(second) || isLengthAccess(t, second) {
			return nil
		}
		if v, ok := numericValue(t, second); ok {
			b.Add(fix.ReplaceArgument(t, second, formatNumber(clamp(v))))
			return nil
		}
		if ctx.Types().IsNumber(second) {
			return nil
		}
		b.Add(
			b.InsertBefore(secondRange, "Math.max(0, "),
			b.InsertAfter(secondRange, ")"),
		)
		return nil
	}

	if isExactNumber(first) && isExactNumber(second) {
		b.Add(fix.ReplaceArgument(t, second, formatNumber(first.Lit.Num+second.Lit.Num)))
		return nil
	}

	// the start is evaluated twice in slice(start, start + length)
	if classify.HasSideEffect(t, first) {
		return fix.ErrAbort
	}
	if classify.IsNumber(t, ctx.Scopes(), first) && classify.IsNumber(t, ctx.Scopes(), second) {
		end := fix.OperandText(t, first, fix.PrecAdditive) + " + " + fix.OperandText(t, second, fix.PrecAdditive+1)
		b.Add(fix.ReplaceArgument(t, second, end))
		return nil
	}
	return fix.ErrAbort
}

// fixSubstringArguments turns substring(a, b) into slice(a, b). substring
// clamps negatives to zero and swaps out-of-order bounds, slice does
// neither.
func fixSubstringArguments(ctx *rule.Context, b *fix.Builder, call *ast.Node) error {
	t := ctx.Source()
	first := t.Get(call.Arguments[0])
	firstNumber, firstOK := numericValue(t, first)
	firstText := fix.ParenthesizedText(t, first)

	if len(call.Arguments) == 1 {
		if isLengthAccess(t, first) {
			return nil
		}
		if firstOK {
			b.Add(fix.ReplaceArgument(t, first, formatNumber(clamp(firstNumber))))
			return nil
		}
		if ctx.Types().IsNumber(first) {
			return nil
		}
		firstRange := fix.ParenthesizedRange(t, first)
		b.Add(
			b.InsertBefore(firstRange, "Math.max(0, "),
			b.InsertAfter(firstRange, ")"),
		)
		return nil
	}

	second := t.Get(call.Arguments[1])
	secondNumber, secondOK := numericValue(t, second)
	secondText := fix.ParenthesizedText(t, second)

	if firstOK && secondOK {
		lo, hi := clamp(firstNumber), clamp(secondNumber)
		if firstNumber > secondNumber {
			lo, hi = hi, lo
		}
		if lo != firstNumber {
			b.Add(fix.ReplaceArgument(t, first, formatNumber(lo)))
		}
		if hi != secondNumber {
			b.Add(fix.ReplaceArgument(t, second, formatNumber(hi)))
		}
		return nil
	}

	if (firstOK && firstNumber == 0) || (secondOK && secondNumber == 0) {
		other := secondText
		if !(firstOK && firstNumber == 0) {
			other = firstText
		}
		b.Add(
			fix.ReplaceArgument(t, first, "0"),
			fix.ReplaceArgument(t, second, "Math.max(0, "+other+")"),
		)
		return nil
	}

	// Without static values neither the order of the bounds nor their sign
	// is known.
	return fix.ErrAbort
}
