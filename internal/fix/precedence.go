package fix

import "github.com/termfx/pegasus/internal/ast"

// Operator precedence levels, loosest first.
const (
	PrecSequence = iota + 1
	PrecAssignment // also arrow functions and yield
	PrecConditional
	PrecCoalesce // ?? and ||
	PrecAnd
	PrecBitwiseOr
	PrecBitwiseXor
	PrecBitwiseAnd
	PrecEquality
	PrecRelational // also in, instanceof, as and satisfies
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecExponent
	PrecUnary
	PrecPostfix
	PrecPrimary
)

var binaryPrecedence = map[string]int{
	"??": PrecCoalesce, "||": PrecCoalesce, "&&": PrecAnd,
	"|": PrecBitwiseOr, "^": PrecBitwiseXor, "&": PrecBitwiseAnd,
	"==": PrecEquality, "!=": PrecEquality, "===": PrecEquality, "!==": PrecEquality,
	"<": PrecRelational, ">": PrecRelational, "<=": PrecRelational, ">=": PrecRelational,
	"in": PrecRelational, "instanceof": PrecRelational,
	"<<": PrecShift, ">>": PrecShift, ">>>": PrecShift,
	"+": PrecAdditive, "-": PrecAdditive,
	"*": PrecMultiplicative, "/": PrecMultiplicative, "%": PrecMultiplicative,
	"**": PrecExponent,
}

// Precedence returns the binding strength of the expression n as written,
// ignoring grouping parens around it.
func Precedence(n *ast.Node) int {
	switch n.Kind {
	case ast.KindSequence:
		return PrecSequence
	case ast.KindAssignment, ast.KindArrowFunction, ast.KindYield:
		return PrecAssignment
	case ast.KindConditional:
		return PrecConditional
	case ast.KindBinary, ast.KindLogical:
		if p, ok := binaryPrecedence[n.Operator]; ok {
			return p
		}
		return PrecSequence
	case ast.KindUnary, ast.KindAwait:
		return PrecUnary
	case ast.KindUpdate:
		return PrecPostfix
	case ast.KindUnknown:
		switch n.Type {
		case "as_expression", "satisfies_expression":
			return PrecRelational
		case "type_assertion":
			return PrecUnary
		case "non_null_expression", "instantiation_expression":
			return PrecPostfix
		}
		if n.Expression == ast.NoNode {
			// unrecognised syntax binds loosest
			return PrecSequence
		}
	}
	return PrecPrimary
}

// OperandText returns the source of n, parenthesized unless it already is
// or binds at least as tightly as min.
func OperandText(t *ast.Tree, n *ast.Node, min int) string {
	text := ParenthesizedText(t, n)
	if IsParenthesized(t, n) || Precedence(n) >= min {
		return text
	}
	return "(" + text + ")"
}
