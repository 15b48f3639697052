package typeinfo

import (
	"strings"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/scope"
)

const maxInferDepth = 24

var arrayToArray = map[string]bool{
	"concat": true, "copyWithin": true, "fill": true, "filter": true,
	"flat": true, "flatMap": true, "map": true, "reverse": true, "slice": true,
	"sort": true, "splice": true, "toReversed": true, "toSorted": true,
	"toSpliced": true, "with": true,
}

var arrayToNumber = map[string]bool{
	"findIndex": true, "findLastIndex": true, "indexOf": true,
	"lastIndexOf": true, "push": true, "unshift": true,
}

var arrayToBoolean = map[string]bool{"every": true, "includes": true, "some": true}

var stringToNumber = map[string]bool{
	"charCodeAt": true, "codePointAt": true, "indexOf": true,
	"lastIndexOf": true, "localeCompare": true, "search": true,
}

var stringToString = map[string]bool{
	"charAt": true, "concat": true, "normalize": true, "padEnd": true,
	"padStart": true, "repeat": true, "replace": true, "replaceAll": true,
	"slice": true, "substr": true, "substring": true, "toLocaleLowerCase": true,
	"toLocaleUpperCase": true, "toLowerCase": true, "toString": true,
	"toUpperCase": true, "trim": true, "trimEnd": true, "trimStart": true,
}

var stringToBoolean = map[string]bool{"endsWith": true, "includes": true, "startsWith": true}

// Inferer is a file-local structural Oracle. It understands literals,
// TypeScript annotations on bindings and assertions, single-definition
// bindings and the return types of common built-in methods. Anything else
// is any.
type Inferer struct {
	tree   *ast.Tree
	scopes *scope.Manager
	depth  int
}

// NewInferer returns an Oracle for one parsed file.
func NewInferer(tree *ast.Tree, scopes *scope.Manager) *Inferer {
	return &Inferer{tree: tree, scopes: scopes}
}

// ConstrainedType implements Oracle.
func (in *Inferer) ConstrainedType(n *ast.Node) (*Type, error) {
	if n == nil {
		return nil, ErrNoType
	}
	return in.infer(n), nil
}

func (in *Inferer) infer(n *ast.Node) *Type {
	if n == nil || in.depth >= maxInferDepth {
		return anyType
	}
	in.depth++
	defer func() { in.depth-- }()

	t := in.tree
	switch n.Kind {
	case ast.KindLiteral:
		switch n.Lit.Kind {
		case ast.LitNumber:
			return &Type{Flags: NumberLiteral}
		case ast.LitString:
			return &Type{Flags: StringLiteral}
		case ast.LitBoolean:
			return &Type{Flags: BooleanLiteral}
		case ast.LitNull:
			return nullType
		case ast.LitBigInt:
			return &Type{Flags: BigInt}
		}
		return objectType
	case ast.KindTemplate:
		return stringType
	case ast.KindArray:
		return ArrayOf(in.elementType(n))
	case ast.KindObject, ast.KindFunctionExpression, ast.KindArrowFunction, ast.KindClass:
		return objectType
	case ast.KindIdentifier:
		return in.identifier(n)
	case ast.KindUnknown:
		if n.Annotation != "" {
			return ParseAnnotation(n.Annotation)
		}
		inner := in.infer(t.Get(n.Expression))
		if n.Type == "non_null_expression" {
			return nonNullable(inner)
		}
		return inner
	case ast.KindMember:
		return in.member(n)
	case ast.KindCall:
		return in.call(n)
	case ast.KindNew:
		if ast.IsIdentifierNamed(t.Get(n.Callee), "Array") {
			return ArrayOf(nil)
		}
		return objectType
	case ast.KindUnary:
		switch n.Operator {
		case "!", "delete":
			return booleanType
		case "typeof":
			return stringType
		case "void":
			return undefinedType
		case "+":
			return numberType
		case "-", "~":
			if in.infer(t.Get(n.Argument)).Has(BigInt) {
				return &Type{Flags: BigInt}
			}
			return numberType
		}
	case ast.KindUpdate:
		return numberType
	case ast.KindBinary:
		return in.binary(n)
	case ast.KindAssignment:
		if n.Operator == "=" {
			return in.infer(t.Get(n.Right))
		}
	case ast.KindConditional:
		return sameOrUnion(in.infer(t.Get(n.Consequent)), in.infer(t.Get(n.Alternate)))
	case ast.KindSequence:
		if len(n.List) > 0 {
			return in.infer(t.Get(n.List[len(n.List)-1]))
		}
	}
	return anyType
}

func (in *Inferer) elementType(arr *ast.Node) *Type {
	var elem *Type
	for _, id := range arr.List {
		el := in.tree.Get(id)
		if el == nil || el.Kind == ast.KindSpread {
			return nil
		}
		et := in.infer(el).Widen()
		if elem == nil {
			elem = et
			continue
		}
		if elem.Flags != et.Flags {
			return nil
		}
	}
	return elem
}

func (in *Inferer) identifier(n *ast.Node) *Type {
	var v *scope.Variable
	if in.scopes != nil {
		if ref := in.scopes.Reference(n); ref != nil {
			v = ref.Resolved
		}
		if v == nil {
			v = in.scopes.Declared(n)
		}
	}
	if v == nil {
		if n.Name == "undefined" {
			return undefinedType
		}
		return anyType
	}
	if len(v.Defs) != 1 {
		return anyType
	}
	def := v.Defs[0]
	if def.Name != nil && def.Name.Annotation != "" {
		return ParseAnnotation(def.Name.Annotation)
	}
	decl := def.Node
	if decl == nil || decl.Kind != ast.KindVariableDeclarator || decl.Ident != def.Name.ID {
		return anyType
	}
	if decl.Annotation != "" {
		return ParseAnnotation(decl.Annotation)
	}
	init := in.tree.Get(decl.Init)
	if init == nil {
		return anyType
	}
	typ := in.infer(init)
	if def.Kind != scope.DefConst {
		typ = typ.Widen()
	}
	return typ
}

func (in *Inferer) member(n *ast.Node) *Type {
	t := in.tree
	prop := t.Get(n.Property)
	if n.Computed || prop == nil || prop.Kind != ast.KindIdentifier {
		obj := in.infer(t.Get(n.Object))
		if n.Computed && obj.IsArray() && obj.Elem != nil {
			return obj.Elem
		}
		return anyType
	}
	if prop.Name == "length" {
		obj := in.infer(t.Get(n.Object))
		if obj.IsArray() || obj.Has(String|StringLiteral) {
			return numberType
		}
	}
	return anyType
}

func (in *Inferer) call(n *ast.Node) *Type {
	t := in.tree
	callee := t.Get(n.Callee)
	if callee == nil {
		return anyType
	}
	if callee.Kind == ast.KindIdentifier {
		switch callee.Name {
		case "Number", "parseInt", "parseFloat":
			return numberType
		case "String":
			return stringType
		case "Boolean":
			return booleanType
		case "Array":
			return ArrayOf(nil)
		}
		return anyType
	}
	if callee.Kind != ast.KindMember || callee.Computed {
		return anyType
	}
	prop := t.Get(callee.Property)
	if prop == nil || prop.Kind != ast.KindIdentifier {
		return anyType
	}
	method := prop.Name
	obj := t.Get(callee.Object)

	switch {
	case ast.IsIdentifierNamed(obj, "Array") && (method == "from" || method == "of"):
		return ArrayOf(nil)
	case ast.IsIdentifierNamed(obj, "Object") && (method == "keys" || method == "values" || method == "entries"):
		return ArrayOf(nil)
	case ast.IsIdentifierNamed(obj, "Math"):
		return numberType
	}

	recv := in.infer(obj)
	var out *Type
	switch {
	case recv.IsArray():
		switch {
		case arrayToArray[method]:
			if method == "filter" || method == "slice" || method == "reverse" || method == "sort" {
				out = ArrayOf(recv.Elem)
			} else {
				out = ArrayOf(nil)
			}
		case arrayToNumber[method]:
			out = numberType
		case arrayToBoolean[method]:
			out = booleanType
		case method == "join":
			out = stringType
		}
	case recv.Has(String | StringLiteral):
		switch {
		case stringToNumber[method]:
			out = numberType
		case stringToString[method]:
			out = stringType
		case stringToBoolean[method]:
			out = booleanType
		case method == "split":
			out = ArrayOf(stringType)
		}
	}
	if out == nil {
		return anyType
	}
	if n.Optional || callee.Optional {
		return UnionOf(out, undefinedType)
	}
	return out
}

func (in *Inferer) binary(n *ast.Node) *Type {
	t := in.tree
	switch n.Operator {
	case "==", "!=", "===", "!==", "<", ">", "<=", ">=", "in", "instanceof":
		return booleanType
	case "+":
		l, r := in.infer(t.Get(n.Left)), in.infer(t.Get(n.Right))
		if l.Has(String|StringLiteral) || r.Has(String|StringLiteral) {
			return stringType
		}
		if l.Has(Number|NumberLiteral) && r.Has(Number|NumberLiteral) {
			return numberType
		}
		return anyType
	}
	l, r := in.infer(t.Get(n.Left)), in.infer(t.Get(n.Right))
	if l.Has(BigInt) || r.Has(BigInt) {
		return &Type{Flags: BigInt}
	}
	return numberType
}

func sameOrUnion(a, b *Type) *Type {
	if a.Flags == b.Flags && a.Flags&Union == 0 {
		return a
	}
	return UnionOf(a, b)
}

func nonNullable(t *Type) *Type {
	var keep []*Type
	for _, p := range t.Parts() {
		if !p.Has(Null | Undefined) {
			keep = append(keep, p)
		}
	}
	if len(keep) == 0 {
		return anyType
	}
	return UnionOf(keep...)
}

// ParseAnnotation reads a TypeScript type annotation. Only primitives, array
// forms and unions of them are understood; anything else is any.
func ParseAnnotation(src string) *Type {
	src = strings.TrimSpace(src)
	if src == "" {
		return anyType
	}
	if parts := splitTopLevel(src, '|'); len(parts) > 1 {
		types := make([]*Type, 0, len(parts))
		for _, p := range parts {
			if strings.TrimSpace(p) == "" {
				continue
			}
			types = append(types, ParseAnnotation(p))
		}
		return UnionOf(types...)
	}
	if strings.HasPrefix(src, "(") && strings.HasSuffix(src, ")") {
		return ParseAnnotation(src[1 : len(src)-1])
	}
	src = strings.TrimSpace(strings.TrimPrefix(src, "readonly "))
	if strings.HasSuffix(src, "[]") {
		return ArrayOf(ParseAnnotation(src[:len(src)-2]))
	}
	for _, generic := range []string{"Array<", "ReadonlyArray<"} {
		if strings.HasPrefix(src, generic) && strings.HasSuffix(src, ">") {
			return ArrayOf(ParseAnnotation(src[len(generic) : len(src)-1]))
		}
	}
	if strings.HasPrefix(src, "[") && strings.HasSuffix(src, "]") {
		// tuples are arrays
		return ArrayOf(nil)
	}
	switch src {
	case "number":
		return numberType
	case "string":
		return stringType
	case "boolean":
		return booleanType
	case "bigint":
		return &Type{Flags: BigInt}
	case "null":
		return nullType
	case "undefined", "void":
		return undefinedType
	case "unknown":
		return &Type{Flags: Unknown}
	case "object":
		return objectType
	case "true", "false":
		return &Type{Flags: BooleanLiteral}
	}
	if src[0] == '"' || src[0] == '\'' {
		return &Type{Flags: StringLiteral}
	}
	if src[0] >= '0' && src[0] <= '9' || src[0] == '-' {
		return &Type{Flags: NumberLiteral}
	}
	return anyType
}

// splitTopLevel splits s on sep outside brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
