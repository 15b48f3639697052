package rules

import (
	"fmt"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/classify"
	"github.com/termfx/pegasus/internal/fix"
	"github.com/termfx/pegasus/internal/match"
	"github.com/termfx/pegasus/internal/rule"
)

var searchErrorMessages = map[string]string{
	"findIndex":     "Use `.indexOf()` instead of `.findIndex()` when looking for the index of an item.",
	"findLastIndex": "Use `.lastIndexOf()` instead of `findLastIndex() when looking for the index of an item.`",
}

// arraySearch detects a search method called with a callback that only
// compares its parameter against a value:
//
//	foo.findIndex(x => x === bar)  ->  foo.indexOf(bar)
type arraySearch struct {
	method       string
	replacement  string
	errorID      string
	suggestionID string
}

func newArraySearch(method, replacement string) *arraySearch {
	// prefixed so several searches can share one rule's message table
	prefix := fmt.Sprintf("prefer-%s-over-%s/", replacement, method)
	return &arraySearch{
		method:       method,
		replacement:  replacement,
		errorID:      prefix + "error",
		suggestionID: prefix + "suggestion",
	}
}

func (s *arraySearch) messages() map[string]string {
	msg, ok := searchErrorMessages[s.method]
	if !ok {
		msg = fmt.Sprintf("Use `.%s()` instead of `.%s()` when checking value existence.", s.replacement, s.method)
	}
	return map[string]string{
		s.errorID:      msg,
		s.suggestionID: fmt.Sprintf("Replace `.%s()` with `.%s()`.", s.method, s.replacement),
	}
}

func (s *arraySearch) listen(ctx *rule.Context) {
	ctx.On("CallExpression", func(n *ast.Node) error { return s.check(ctx, n) })
}

func strictCompare(body *ast.Node) *ast.Node {
	if body == nil || body.Kind != ast.KindBinary || body.Operator != "===" {
		return nil
	}
	return body
}

// compareCallback returns the comparison of a single-parameter callback
// whose body is exactly one === comparison involving the parameter.
func compareCallback(t *ast.Tree, fn *ast.Node) *ast.Node {
	if fn == nil || (fn.Kind != ast.KindArrowFunction && fn.Kind != ast.KindFunctionExpression) {
		return nil
	}
	if fn.Async || fn.Generator || len(fn.Params) != 1 {
		return nil
	}
	param := t.Get(fn.Params[0])
	body := t.Get(fn.Body)
	var cmp *ast.Node
	switch {
	case fn.Kind == ast.KindArrowFunction && body != nil && body.Kind != ast.KindBlock:
		cmp = strictCompare(body)
	case body != nil && body.Kind == ast.KindBlock && len(body.List) == 1:
		ret := t.Get(body.List[0])
		if ret.Kind == ast.KindReturn {
			cmp = strictCompare(t.Get(ret.Argument))
		}
	}
	if cmp == nil {
		return nil
	}
	if !match.IsSameIdentifier(t.Get(cmp.Left), param) && !match.IsSameIdentifier(t.Get(cmp.Right), param) {
		return nil
	}
	return cmp
}

func (s *arraySearch) check(ctx *rule.Context, call *ast.Node) error {
	t := ctx.Source()
	if !match.IsMethodCall(t, call, match.MethodCall(s.method).Args(1).NotOptional()) {
		return nil
	}
	callback := t.Get(call.Arguments[0])
	cmp := compareCallback(t, callback)
	if cmp == nil {
		return nil
	}

	param := t.Get(callback.Params[0])
	left, right := t.Get(cmp.Left), t.Get(cmp.Right)
	var search, paramUse *ast.Node
	switch {
	case ast.IsIdentifierNamed(left, param.Name):
		search, paramUse = right, left
	case ast.IsIdentifierNamed(right, param.Name):
		search, paramUse = left, right
	default:
		return nil
	}

	fnScope := ctx.Scopes().Acquire(callback)
	v := ctx.Scopes().Declared(param)
	if fnScope == nil || v == nil || v.Scope != fnScope {
		return fmt.Errorf("%w: parameter %s of %s", classify.ErrScopeMismatch, param.Name, s.method)
	}
	for _, ref := range v.References {
		if ref.Identifier != paramUse {
			return nil
		}
	}
	used, err := classify.IsFunctionSelfUsedInside(t, callback, fnScope)
	if err != nil {
		return err
	}
	if used {
		return nil
	}

	methodNode := t.Get(t.Get(call.Callee).Property)
	replace := func(b *fix.Builder) error {
		text := t.Text(search)
		if fix.IsParenthesized(t, search) && !fix.IsParenthesized(t, callback) {
			text = "(" + text + ")"
		}
		b.Add(
			b.ReplaceText(methodNode, s.replacement),
			b.ReplaceText(callback, text),
		)
		return nil
	}

	report := rule.Report{Node: methodNode, MessageID: s.errorID}
	if classify.HasSideEffect(t, search) {
		report.Suggestions = []rule.Suggestion{{MessageID: s.suggestionID, Fix: replace}}
	} else {
		report.Fix = replace
	}
	return ctx.Report(report)
}
