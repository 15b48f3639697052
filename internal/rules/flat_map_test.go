package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/typeinfo"
)

func TestPreferArrayFlatMap(t *testing.T) {
	const id = "preferArrayFlatMap"
	valid := []string{
		"const bar = [1,2,3].map()",
		"const bar = [1,2,3].map(i => i)",
		"const bar = [1,2,3].map((i) => { return i; })",
		"const bar = foo.map(i => i)",
		"const bar = [[1],[2],[3]].flat()",
		"const bar = [1,2,3].map(i => [i]).sort().flat()",
		"let bar = [1,2,3].map(i => [i]);\nbar = bar.flat();",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(2)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(1, null)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(Infinity)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(Number.MAX_SAFE_INTEGER)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(...[1])",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(0.4 +.6)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(+1)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(foo)",
		"const bar = [[1],[2],[3]].map(i => [i]).flat(1.00)",
		"const bar = [1,2,3].map(i => [i])?.flat()",
		"const bar = [1,2,3].map?.(i => [i]).flat()",
		"const bar = { map: () => {} }.map(i => [i]).flat()",
		"const foo = 'abc'; const bar = foo.map(i => [i]).flat()",
		"function f(xs: string) { return xs.map(x => [x]).flat(); }",
		"function f(xs: number[] | string) { return xs.map(x => [x]).flat(); }",
	}
	invalid := []invalid{
		{
			Code:   "const bar = [[1],[2],[3]].map(i => [i]).flat()",
			Output: "const bar = [[1],[2],[3]].flatMap(i => [i])",
			Errors: []string{id},
		},
		{
			Code:   "const bar = [[1],[2],[3]].map(i => [i]).flat(1,)",
			Output: "const bar = [[1],[2],[3]].flatMap(i => [i])",
			Errors: []string{id},
		},
		{
			Code:   "const bar = [1,2,3].map((i) => { return [i]; }).flat()",
			Output: "const bar = [1,2,3].flatMap((i) => { return [i]; })",
			Errors: []string{id},
		},
		{
			Code:   "const bar = [1,2,3].map(foo).flat()",
			Output: "const bar = [1,2,3].flatMap(foo)",
			Errors: []string{id},
		},
		{
			Code:   "const bar = [1,2,3].map(i => i).map(i => [i]).flat()",
			Output: "const bar = [1,2,3].map(i => i).flatMap(i => [i])",
			Errors: []string{id},
		},
		{
			Code:   "const bar = [1,2,3].sort().map(i => [i]).flat()",
			Output: "const bar = [1,2,3].sort().flatMap(i => [i])",
			Errors: []string{id},
		},
		{
			Code:   "const bar = (([1,2,3].map(i => [i]))).flat()",
			Output: "const bar = (([1,2,3].flatMap(i => [i])))",
			Errors: []string{id},
		},
		{
			Code:   "let bar = [1,2,3].map(i => [i]) // comment\n.flat();",
			Output: "let bar = [1,2,3].flatMap(i => [i]);",
			Errors: []string{id},
		},
		{
			Code:   "let bar = [1,2,3] . map( x => y ) . flat () // 🤪",
			Output: "let bar = [1,2,3] . flatMap( x => y ) // 🤪",
			Errors: []string{id},
		},
		{
			Code:   "const bar = [1,2,3].map(i => [i]).flat(1);",
			Output: "const bar = [1,2,3].flatMap(i => [i]);",
			Errors: []string{id},
		},
		{
			Code:   "function f(xs: string[]) { return xs.map(x => [x]).flat(); }",
			Output: "function f(xs: string[]) { return xs.flatMap(x => [x]); }",
			Errors: []string{id},
		},
		{
			Code:   "const bar = foo.map(i => [i]).flat()",
			Output: "const bar = foo.flatMap(i => [i])",
			Errors: []string{id},
		},
		{
			Code:   "function f(xs: Foo) { return xs.map(x => [x]).flat(); }",
			Output: "function f(xs: Foo) { return xs.flatMap(x => [x]); }",
			Errors: []string{id},
		},
	}
	runRule(t, PreferArrayFlatMap, valid, invalid)
}

// fixedOracle types every identifier with typ and everything else any.
type fixedOracle struct{ typ *typeinfo.Type }

func (o fixedOracle) ConstrainedType(n *ast.Node) (*typeinfo.Type, error) {
	if n.Kind == ast.KindIdentifier {
		return o.typ, nil
	}
	return &typeinfo.Type{Flags: typeinfo.Any}, nil
}

func TestPreferArrayFlatMapTypeChecked(t *testing.T) {
	tests := []struct {
		name   string
		oracle typeinfo.Oracle
		want   int
	}{
		{"array", fixedOracle{typeinfo.ArrayOf(nil)}, 1},
		{"union of arrays", fixedOracle{typeinfo.UnionOf(typeinfo.ArrayOf(nil), typeinfo.ArrayOf(nil))}, 1},
		{"any", fixedOracle{&typeinfo.Type{Flags: typeinfo.Any}}, 0},
		{"object", fixedOracle{&typeinfo.Type{Flags: typeinfo.Object}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ast.ParseString("foo.map(x => [x]).flat()", ast.TypeScript)
			require.NoError(t, err)
			diags, err := rule.Run(rule.NewFile("fixture.ts", tree, tt.oracle), PreferArrayFlatMap)
			require.NoError(t, err)
			assert.Len(t, diags, tt.want)
		})
	}
}
