package rules

import (
	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/match"
	"github.com/termfx/pegasus/internal/rule"
)

var (
	flatCall = match.MethodCall("flat").NotOptional()
	mapCall  = match.MethodCall("map").NotOptional()
)

// PreferArrayFlatMap rewrites .map(…).flat() into .flatMap(…).
var PreferArrayFlatMap = register(&rule.Rule{
	Name: "prefer-array-flat-map",
	Meta: rule.Meta{
		Type:        rule.TypeSuggestion,
		Description: "Prefer `.flatMap(…)` over `.map(…).flat()`.",
		Fixable:     true,
		Messages: map[string]string{
			"preferArrayFlatMap": "Prefer `.flatMap(…)` over `.map(…).flat()`.",
		},
	},
	Create: func(ctx *rule.Context) rule.Listeners {
		return rule.Listeners{
			"CallExpression": {func(n *ast.Node) error { return checkFlatMap(ctx, n) }},
		}
	},
})

// flattensOneLevel reports whether the arguments of .flat() ask for the
// default depth: none, or the literal 1 spelled exactly so.
func flattensOneLevel(t *ast.Tree, flat *ast.Node) bool {
	switch len(flat.Arguments) {
	case 0:
		return true
	case 1:
		arg := t.Get(flat.Arguments[0])
		return match.IsNumberLiteral(arg) && match.IsRaw(arg, "1")
	}
	return false
}

func checkFlatMap(ctx *rule.Context, flat *ast.Node) error {
	t := ctx.Source()
	if !match.IsMethodCall(t, flat, flatCall) || !flattensOneLevel(t, flat) {
		return nil
	}
	mapped := t.Get(t.Get(flat.Callee).Object)
	if !match.IsMethodCall(t, mapped, mapCall) {
		return nil
	}
	mapMember := t.Get(mapped.Callee)

	// a type checker must prove an array; file-local inference only rules
	// out receivers it resolved to something else
	types, receiver := ctx.Types(), t.Get(mapMember.Object)
	if types.Checked() && !types.IsArrayOrUnionOfArrays(receiver) {
		return nil
	}
	if !types.Checked() && types.IsKnownNonArray(receiver) {
		return nil
	}

	mapProperty := t.Get(mapMember.Property)
	return ctx.Report(rule.Report{
		Node:      flat,
		Range:     &ast.Range{Start: mapProperty.Range.Start, End: flat.Range.End},
		MessageID: "preferArrayFlatMap",
		Fix: func(b *fix.Builder) error {
			//   map(…).flat()    (map(…)).flat()
			//         ^^^^^^^            ^^^^^^^
			b.Add(fix.RemoveMethodCall(t, flat)...)
			b.Add(b.ReplaceText(mapProperty, "flatMap"))
			return nil
		},
	})
}
