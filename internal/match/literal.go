package match

import "github.com/termfx/pegasus/internal/ast"

// IsLiteral reports whether n is any literal.
func IsLiteral(n *ast.Node) bool {
	return n != nil && n.Kind == ast.KindLiteral
}

func isLiteralKind(n *ast.Node, k ast.LiteralKind) bool {
	return IsLiteral(n) && n.Lit.Kind == k
}

// IsNumberLiteral reports whether n is a numeric literal. BigInts are not.
func IsNumberLiteral(n *ast.Node) bool { return isLiteralKind(n, ast.LitNumber) }

// IsStringLiteral reports whether n is a string literal.
func IsStringLiteral(n *ast.Node) bool { return isLiteralKind(n, ast.LitString) }

// IsRegexLiteral reports whether n is a regular expression literal.
func IsRegexLiteral(n *ast.Node) bool { return isLiteralKind(n, ast.LitRegex) }

// IsBigIntLiteral reports whether n is a bigint literal.
func IsBigIntLiteral(n *ast.Node) bool { return isLiteralKind(n, ast.LitBigInt) }

// IsNullLiteral reports whether n is the null literal.
func IsNullLiteral(n *ast.Node) bool { return IsLiteral(n) && n.Raw == "null" }

// IsBooleanLiteral reports whether n is true or false.
func IsBooleanLiteral(n *ast.Node) bool { return isLiteralKind(n, ast.LitBoolean) }

// IsNumber reports whether n is a numeric literal with value v.
func IsNumber(n *ast.Node, v float64) bool {
	return IsNumberLiteral(n) && !n.Lit.Inexact && n.Lit.Num == v
}

// IsString reports whether n is a string literal with value v.
func IsString(n *ast.Node, v string) bool {
	return IsStringLiteral(n) && !n.Lit.Inexact && n.Lit.Str == v
}

// IsRaw reports whether n is a literal spelled exactly raw in the source.
func IsRaw(n *ast.Node, raw string) bool {
	return IsLiteral(n) && n.Raw == raw
}
