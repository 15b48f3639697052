package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/pegasus/internal/ast"
)

func analyze(t *testing.T, src string) (*ast.Tree, *Manager) {
	t.Helper()
	tree, err := ast.ParseString(src, ast.JavaScript)
	require.NoError(t, err)
	require.Empty(t, tree.Errors)
	return tree, Analyze(tree)
}

func TestAnalyze_ConstBinding(t *testing.T) {
	_, m := analyze(t, "const a = 1; use(a, a)")

	v := m.Global().LookupLocal("a")
	require.NotNil(t, v)
	require.Len(t, v.Defs, 1)
	assert.Equal(t, DefConst, v.Defs[0].Kind)
	require.Len(t, v.References, 3)
	assert.True(t, v.References[0].Init)
	assert.True(t, v.References[0].Write)
	assert.True(t, v.References[1].Read)
	assert.False(t, v.References[1].Write)

	// use is never declared
	require.Len(t, m.Global().Through, 1)
	assert.Equal(t, "use", m.Global().Through[0].Identifier.Name)
}

func TestAnalyze_PropertiesAreNotReferences(t *testing.T) {
	_, m := analyze(t, "const x = {}; x.y; ({ y: 1, [x]: 2 }); x.y = 2")

	v := m.Global().LookupLocal("x")
	require.NotNil(t, v)
	assert.Len(t, v.References, 4)
	assert.Nil(t, m.Global().LookupLocal("y"))
	assert.Empty(t, m.Global().Through)
}

func TestAnalyze_FunctionScopes(t *testing.T) {
	tree, m := analyze(t, "function outer(p) { var v = p; { let b = v } return arguments }")

	fn := tree.FindAll(ast.KindFunctionDeclaration)[0]
	s := m.Acquire(fn)
	require.NotNil(t, s)
	assert.Equal(t, Function, s.Kind)
	assert.Same(t, fn, s.Block)

	require.NotNil(t, s.LookupLocal("p"))
	require.NotNil(t, s.LookupLocal("v"))
	assert.Nil(t, s.LookupLocal("b"))

	args := s.LookupLocal("arguments")
	require.NotNil(t, args)
	assert.True(t, args.Implicit())
	require.Len(t, args.References, 1)
	assert.Same(t, s, args.References[0].From)

	assert.NotNil(t, m.Global().LookupLocal("outer"))
}

func TestAnalyze_VarHoistsOutOfBlocks(t *testing.T) {
	_, m := analyze(t, "if (x) { var h = 1; let l = 2 }")
	assert.NotNil(t, m.Global().LookupLocal("h"))
	assert.Nil(t, m.Global().LookupLocal("l"))
}

func TestAnalyze_NamedFunctionExpression(t *testing.T) {
	tree, m := analyze(t, "const f = function self(n) { return self(n - 1) }")

	fn := tree.FindAll(ast.KindFunctionExpression)[0]
	s := m.Acquire(fn)
	require.NotNil(t, s)
	assert.Equal(t, Function, s.Kind)

	v := FindVariableOf(s, tree.Get(fn.Ident))
	require.NotNil(t, v)
	assert.Equal(t, FunctionExpressionName, v.Scope.Kind)
	assert.Len(t, v.References, 1)
	assert.Nil(t, m.Global().LookupLocal("self"))
}

func TestAnalyze_ThisFound(t *testing.T) {
	tree, m := analyze(t, "function a() { return () => this } function b() { function c() { this } }")

	fns := tree.FindAll(ast.KindFunctionDeclaration)
	require.Len(t, fns, 3)
	assert.True(t, m.Acquire(fns[0]).ThisFound)
	assert.False(t, m.Acquire(fns[1]).ThisFound)
	assert.True(t, m.Acquire(fns[2]).ThisFound)

	arrow := tree.FindAll(ast.KindArrowFunction)[0]
	assert.False(t, m.Acquire(arrow).ThisFound)
	assert.Nil(t, m.Acquire(arrow).LookupLocal("arguments"))
}

func TestAnalyze_WriteReferences(t *testing.T) {
	_, m := analyze(t, "let a, b; a = 1; b += 1; a++; [a, { b }] = c")

	a := m.Global().LookupLocal("a")
	require.NotNil(t, a)
	require.Len(t, a.References, 3)
	assert.True(t, a.References[0].Write)
	assert.False(t, a.References[0].Read)
	assert.True(t, a.References[1].Read)
	assert.True(t, a.References[1].Write)
	assert.True(t, a.References[2].Write)

	b := m.Global().LookupLocal("b")
	require.NotNil(t, b)
	require.Len(t, b.References, 2)
	assert.True(t, b.References[0].Read)
	assert.True(t, b.References[1].Write)
}

func TestAnalyze_CatchAndClass(t *testing.T) {
	_, m := analyze(t, "try {} catch (err) { err } class K { m() { return K } }")

	var catchScope *Scope
	for _, s := range m.Scopes() {
		if s.Kind == Catch {
			catchScope = s
		}
	}
	require.NotNil(t, catchScope)
	err := catchScope.LookupLocal("err")
	require.NotNil(t, err)
	assert.Len(t, err.References, 1)

	k := m.Global().LookupLocal("K")
	require.NotNil(t, k)
	assert.Equal(t, DefClassName, k.Defs[0].Kind)
}

func TestScopeFor(t *testing.T) {
	tree, m := analyze(t, "function f(x) { return x }")
	ret := tree.FindAll(ast.KindReturn)[0]
	s := m.ScopeFor(ret)
	require.NotNil(t, s)
	assert.Equal(t, Function, s.Kind)

	ref := m.Reference(tree.Get(ret.Argument))
	require.NotNil(t, ref)
	require.NotNil(t, ref.Resolved)
	assert.Equal(t, DefParam, ref.Resolved.Defs[0].Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "function", Function.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
