// Package classify decides, without type information, whether expressions
// are provably numeric, consumed only for truthiness, or side-effect free.
//
// All answers are conservative: true means proven, false means unknown.
package classify

import (
	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/match"
	"github.com/termfx/pegasus/internal/scope"
	"github.com/termfx/pegasus/internal/staticvalue"
)

var mathProperties = set("E", "LN2", "LN10", "LOG2E", "LOG10E", "PI", "SQRT1_2", "SQRT2")

var mathMethods = set(
	"abs", "acos", "acosh", "asin", "asinh", "atan", "atanh", "atan2", "cbrt",
	"ceil", "clz32", "cos", "cosh", "exp", "expm1", "floor", "fround", "hypot",
	"imul", "log", "log1p", "log10", "log2", "max", "min", "pow", "random",
	"round", "sign", "sin", "sinh", "sqrt", "tan", "tanh", "trunc",
)

var numberProperties = set(
	"EPSILON", "MAX_SAFE_INTEGER", "MAX_VALUE", "MIN_SAFE_INTEGER", "MIN_VALUE",
	"NaN", "NEGATIVE_INFINITY", "POSITIVE_INFINITY",
)

var numberMethods = set("parseFloat", "parseInt")

// mathOperators force a numeric result when one side is a number. + and
// >>> are handled separately.
var mathOperators = set("-", "*", "/", "%", "**", "<<", ">>", "|", "^", "&")

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

func isStaticProperty(t *ast.Tree, n *ast.Node, object string, properties map[string]bool) bool {
	if n == nil || n.Kind != ast.KindMember || n.Computed || n.Optional {
		return false
	}
	prop := t.Get(n.Property)
	return ast.IsIdentifierNamed(t.Get(n.Object), object) &&
		prop != nil && prop.Kind == ast.KindIdentifier && properties[prop.Name]
}

func isFunctionCall(t *ast.Tree, n *ast.Node, name string) bool {
	return n != nil && n.Kind == ast.KindCall && !n.Optional &&
		ast.IsIdentifierNamed(t.Get(n.Callee), name)
}

func isStaticMethodCall(t *ast.Tree, n *ast.Node, object string, methods map[string]bool) bool {
	return n != nil && n.Kind == ast.KindCall && !n.Optional &&
		isStaticProperty(t, t.Get(n.Callee), object, methods)
}

// IsLengthProperty reports whether n is a plain .length access.
func IsLengthProperty(t *ast.Tree, n *ast.Node) bool {
	return match.IsMember(t, n, match.Member("length").WithOptional(match.False))
}

// IsNumber reports whether n provably evaluates to a number (not a bigint).
func IsNumber(t *ast.Tree, scopes *scope.Manager, n *ast.Node) bool {
	if n == nil {
		return false
	}
	if match.IsNumberLiteral(n) ||
		isStaticProperty(t, n, "Math", mathProperties) ||
		isStaticMethodCall(t, n, "Math", mathMethods) ||
		isFunctionCall(t, n, "Number") ||
		isStaticProperty(t, n, "Number", numberProperties) ||
		isStaticMethodCall(t, n, "Number", numberMethods) ||
		isFunctionCall(t, n, "parseInt") ||
		isFunctionCall(t, n, "parseFloat") ||
		IsLengthProperty(t, n) {
		return true
	}

	left, right := t.Get(n.Left), t.Get(n.Right)
	switch n.Kind {
	case ast.KindAssignment:
		if n.Operator == "=" {
			return IsNumber(t, scopes, right) || isStaticNumber(t, scopes, n)
		}
		if numericOperator(t, scopes, n.Operator[:len(n.Operator)-1], left, right) {
			return true
		}
	case ast.KindBinary:
		if numericOperator(t, scopes, n.Operator, left, right) {
			return true
		}
	case ast.KindUnary:
		switch n.Operator {
		case "+":
			// unary plus throws on bigint
			return true
		case "-", "~":
			if IsNumber(t, scopes, t.Get(n.Argument)) {
				return true
			}
		}
	case ast.KindUpdate:
		if IsNumber(t, scopes, t.Get(n.Argument)) {
			return true
		}
	case ast.KindConditional:
		consequent := IsNumber(t, scopes, t.Get(n.Consequent))
		alternate := IsNumber(t, scopes, t.Get(n.Alternate))
		if consequent && alternate {
			return true
		}
		if test, ok := staticvalue.Evaluate(t, scopes, t.Get(n.Test)); ok {
			if (test.Truthy() && consequent) || (!test.Truthy() && alternate) {
				return true
			}
		}
	case ast.KindSequence:
		if len(n.List) > 0 && IsNumber(t, scopes, t.Get(n.List[len(n.List)-1])) {
			return true
		}
	}

	return isStaticNumber(t, scopes, n)
}

func numericOperator(t *ast.Tree, scopes *scope.Manager, op string, left, right *ast.Node) bool {
	switch {
	case op == "+":
		return IsNumber(t, scopes, left) && IsNumber(t, scopes, right)
	case op == ">>>":
		// zero-fill shift is not defined for bigint
		return true
	case mathOperators[op]:
		// a * b may be a bigint unless one side is a number
		return IsNumber(t, scopes, left) || IsNumber(t, scopes, right)
	}
	return false
}

func isStaticNumber(t *ast.Tree, scopes *scope.Manager, n *ast.Node) bool {
	v, ok := staticvalue.Evaluate(t, scopes, n)
	return ok && v.IsNumber()
}
