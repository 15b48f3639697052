package staticvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/scope"
)

// lastExpr evaluates the expression of the last statement in src.
func lastExpr(t *testing.T, src string) (Value, bool) {
	t.Helper()
	tree, err := ast.ParseString(src, ast.JavaScript)
	require.NoError(t, err)
	require.Empty(t, tree.Errors)
	body := tree.Root().List
	stmt := tree.Get(body[len(body)-1])
	require.Equal(t, ast.KindExpressionStatement, stmt.Kind)
	return Evaluate(tree, scope.Analyze(tree), tree.Get(stmt.Expression))
}

func TestEvaluate_Numbers(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1", 1},
		{"-1", -1},
		{"+'3'", 3},
		{"1 + 2", 3},
		{"10 - 4 * 2", 2},
		{"7 % 3", 1},
		{"2 ** 10", 1024},
		{"1 << 4", 16},
		{"-1 >>> 28", 15},
		{"~0", -1},
		{"5 & 3", 1},
		{"(100, 1)", 1},
		{"true ? 1 : 2", 1},
		{"Math.max(0, -3)", 0},
		{"Math.min(4, 2, 9)", 2},
		{"Math.floor(2.7)", 2},
		{"Math.round(-2.5)", -2},
		{"Math.round(2.5)", 3},
		{"Math.round(0.49999999999999994)", 0},
		{"Number('12')", 12},
		{"'abc'.length", 3},
		{"'😀'.length", 2},
		{`'\uD83D\uDE00'.length`, 2},
		{`'\u{1F600}x'.length`, 3},
		{"'😀'.length - 1", 1},
		{"0x10000000000000000", 18446744073709551616},
		{"0b1111", 15},
		{"0o17", 15},
		{"017", 15},
		{"019", 19},
		{"1_000", 1000},
		{"[1, 2, ...[3]].length", 3},
		{"const a = 2; const b = a * 3; b", 6},
		{"0 || 5", 5},
		{"null ?? 4", 4},
		{"Number.MAX_SAFE_INTEGER", 9007199254740991},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, ok := lastExpr(t, tt.src)
			require.True(t, ok)
			require.Equal(t, Number, v.Kind)
			assert.Equal(t, tt.want, v.Num)
		})
	}
}

func TestEvaluate_OtherTypes(t *testing.T) {
	v, ok := lastExpr(t, "'a' + 1")
	require.True(t, ok)
	assert.Equal(t, "a1", v.Str)

	v, ok = lastExpr(t, "`plain`")
	require.True(t, ok)
	assert.Equal(t, "plain", v.Str)

	v, ok = lastExpr(t, "typeof 1")
	require.True(t, ok)
	assert.Equal(t, "number", v.Str)

	v, ok = lastExpr(t, "1 == '1'")
	require.True(t, ok)
	assert.True(t, v.Bool)

	v, ok = lastExpr(t, "null === undefined")
	require.True(t, ok)
	assert.False(t, v.Bool)

	v, ok = lastExpr(t, "null == undefined")
	require.True(t, ok)
	assert.True(t, v.Bool)

	v, ok = lastExpr(t, "1 / 0")
	require.True(t, ok)
	assert.True(t, math.IsInf(v.Num, 1))

	v, ok = lastExpr(t, "[1, 2] + ''")
	require.True(t, ok)
	assert.Equal(t, "1,2", v.Str)

	v, ok = lastExpr(t, "void 0")
	require.True(t, ok)
	assert.Equal(t, Undefined, v.Kind)
}

func TestEvaluate_NotStatic(t *testing.T) {
	tests := []string{
		"foo",
		"let a = 1; a",
		"var a = 1; a",
		"const { a } = b; a",
		"foo()",
		"`a${b}`",
		"foo.length",
		"Math.random()",
		"'a'.length = 1",
		"/x/",
		"10n",
		"[1] === [1]",
		"const Math = {}; Math.PI",
		"function f(undefined) { undefined }; f",
		`'\uD83D'`,
		`'\uDE00x'.length`,
		`'\07'`,
		"`\\uD83D`.length",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, ok := lastExpr(t, src)
			assert.False(t, ok)
		})
	}
}

func TestEvaluate_UTF16Semantics(t *testing.T) {
	// U+FF61 is one code unit above the high surrogates U+1F600 encodes to
	tests := []struct {
		src  string
		want bool
	}{
		{"'\uFF61' > '😀'", true},
		{"'\uFF61' < '😀'", false},
		{"'a' < 'b'", true},
		{"'ab' <= 'ab'", true},
		{"'b' >= 'ab'", true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, ok := lastExpr(t, tt.src)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Bool)
		})
	}

	v, ok := lastExpr(t, "Math.round(-0.4)")
	require.True(t, ok)
	assert.True(t, math.Signbit(v.Num))
	assert.Equal(t, "0", NumberToString(v.Num))

	v, ok = lastExpr(t, "1e400")
	require.True(t, ok)
	assert.True(t, math.IsInf(v.Num, 1))
}

func TestEvaluate_ShadowedGlobals(t *testing.T) {
	tree, err := ast.ParseString("function f(undefined) { return undefined }", ast.JavaScript)
	require.NoError(t, err)
	ret := tree.FindAll(ast.KindReturn)[0]
	_, ok := Evaluate(tree, scope.Analyze(tree), tree.Get(ret.Argument))
	assert.False(t, ok)

	// without scopes, globals are assumed
	v, ok := Evaluate(tree, nil, tree.Get(ret.Argument))
	assert.True(t, ok)
	assert.Equal(t, Undefined, v.Kind)
}

func TestNumberToString(t *testing.T) {
	assert.Equal(t, "1", NumberToString(1))
	assert.Equal(t, "0.5", NumberToString(0.5))
	assert.Equal(t, "1e+21", NumberToString(1e21))
	assert.Equal(t, "1e-7", NumberToString(1e-7))
	assert.Equal(t, "-3", NumberToString(-3))
	assert.Equal(t, "NaN", NumberToString(math.NaN()))
}
