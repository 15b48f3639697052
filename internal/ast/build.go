package ast

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// builder converts tree-sitter nodes to arena nodes, children first.
type builder struct {
	src []byte
	t   *Tree
}

// skipped lists concrete node types that never carry runtime semantics.
var skipped = map[string]bool{
	"comment":                  true,
	"hash_bang_line":           true,
	"optional_chain":           true,
	"type_annotation":          true,
	"type_arguments":           true,
	"type_parameters":          true,
	"type_identifier":          true,
	"predefined_type":          true,
	"interface_declaration":    true,
	"type_alias_declaration":   true,
	"implements_clause":        true,
	"accessibility_modifier":   true,
	"override_modifier":        true,
	"omitting_type_annotation": true,
	"opting_type_annotation":   true,
	"asserts_annotation":       true,
}

func (b *builder) push(n Node, ts *sitter.Node) NodeID {
	id := NodeID(len(b.t.nodes))
	n.ID = id
	n.Type = ts.Type()
	n.Range = Range{Start: int(ts.StartByte()), End: int(ts.EndByte())}
	b.t.nodes = append(b.t.nodes, n)
	b.t.parents = append(b.t.parents, NoNode)
	b.t.parens = append(b.t.parens, nil)
	return id
}

func (b *builder) text(ts *sitter.Node) string {
	if ts == nil {
		return ""
	}
	return string(b.src[ts.StartByte():ts.EndByte()])
}

func namedChildren(ts *sitter.Node) []*sitter.Node {
	if ts == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		c := ts.NamedChild(i)
		if c == nil || skipped[c.Type()] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstNamed(ts *sitter.Node) *sitter.Node {
	if kids := namedChildren(ts); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

func hasToken(ts *sitter.Node, typ string) bool {
	for i := 0; i < int(ts.ChildCount()); i++ {
		if ts.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

func (b *builder) list(nodes []*sitter.Node) []NodeID {
	ids := make([]NodeID, 0, len(nodes))
	for _, c := range nodes {
		if id := b.convert(c); id != NoNode {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *builder) program(ts *sitter.Node) NodeID {
	return b.push(Node{Kind: KindProgram, List: b.list(namedChildren(ts))}, ts)
}

// condition converts a syntactic parenthesized condition without recording
// its parens as grouping.
func (b *builder) condition(ts *sitter.Node) NodeID {
	if ts != nil && ts.Type() == "parenthesized_expression" {
		return b.convert(firstNamed(ts))
	}
	return b.convert(ts)
}

// clause unwraps for-statement header parts, which may be statements.
func (b *builder) clause(ts *sitter.Node) NodeID {
	if ts == nil {
		return NoNode
	}
	switch ts.Type() {
	case "empty_statement", ";":
		return NoNode
	case "expression_statement":
		return b.convert(firstNamed(ts))
	}
	return b.convert(ts)
}

func (b *builder) convert(ts *sitter.Node) NodeID {
	if ts == nil || skipped[ts.Type()] {
		return NoNode
	}
	field := ts.ChildByFieldName

	switch ts.Type() {
	case "parenthesized_expression":
		inner := b.convert(firstNamed(ts))
		if inner != NoNode {
			b.t.parens[inner] = append(b.t.parens[inner], Range{Start: int(ts.StartByte()), End: int(ts.EndByte())})
		}
		return inner

	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "statement_identifier":
		return b.push(Node{Kind: KindIdentifier, Name: b.text(ts)}, ts)
	case "undefined":
		return b.push(Node{Kind: KindIdentifier, Name: "undefined"}, ts)
	case "private_property_identifier":
		return b.push(Node{Kind: KindPrivateIdentifier, Name: b.text(ts)}, ts)

	case "number":
		return b.push(Node{Kind: KindLiteral, Raw: b.text(ts), Lit: parseNumber(b.text(ts))}, ts)
	case "string":
		raw := b.text(ts)
		return b.push(Node{Kind: KindLiteral, Raw: raw, Lit: unquote(raw)}, ts)
	case "regex":
		pattern := field("pattern")
		return b.push(Node{Kind: KindLiteral, Raw: b.text(ts), Lit: Literal{Kind: LitRegex, Str: b.text(pattern)}}, ts)
	case "true", "false":
		return b.push(Node{Kind: KindLiteral, Raw: b.text(ts), Lit: Literal{Kind: LitBoolean, Bool: ts.Type() == "true"}}, ts)
	case "null":
		return b.push(Node{Kind: KindLiteral, Raw: "null", Lit: Literal{Kind: LitNull}}, ts)
	case "template_string":
		return b.template(ts)

	case "this":
		return b.push(Node{Kind: KindThis}, ts)
	case "super":
		return b.push(Node{Kind: KindSuper}, ts)
	case "import":
		return b.push(Node{Kind: KindImport}, ts)

	case "call_expression":
		callee := b.convert(field("function"))
		args := field("arguments")
		if args != nil && args.Type() == "template_string" {
			return b.push(Node{Kind: KindTaggedTemplate, Callee: callee, Quasi: b.template(args)}, ts)
		}
		return b.push(Node{
			Kind:      KindCall,
			Callee:    callee,
			Arguments: b.list(namedChildren(args)),
			Optional:  hasToken(ts, "optional_chain"),
		}, ts)
	case "new_expression":
		return b.push(Node{
			Kind:      KindNew,
			Callee:    b.convert(field("constructor")),
			Arguments: b.list(namedChildren(field("arguments"))),
		}, ts)
	case "member_expression":
		return b.push(Node{
			Kind:     KindMember,
			Object:   b.convert(field("object")),
			Property: b.convert(field("property")),
			Optional: hasToken(ts, "optional_chain"),
		}, ts)
	case "subscript_expression":
		return b.push(Node{
			Kind:     KindMember,
			Object:   b.convert(field("object")),
			Property: b.convert(field("index")),
			Computed: true,
			Optional: hasToken(ts, "optional_chain"),
		}, ts)

	case "unary_expression":
		return b.push(Node{
			Kind:     KindUnary,
			Operator: b.text(field("operator")),
			Argument: b.convert(field("argument")),
			Prefix:   true,
		}, ts)
	case "update_expression":
		op := field("operator")
		prefix := op != nil && ts.ChildCount() > 0 && ts.Child(0).StartByte() == op.StartByte()
		return b.push(Node{
			Kind:     KindUpdate,
			Operator: b.text(op),
			Argument: b.convert(field("argument")),
			Prefix:   prefix,
		}, ts)
	case "binary_expression":
		op := b.text(field("operator"))
		kind := KindBinary
		if op == "&&" || op == "||" || op == "??" {
			kind = KindLogical
		}
		return b.push(Node{
			Kind:     kind,
			Operator: op,
			Left:     b.convert(field("left")),
			Right:    b.convert(field("right")),
		}, ts)
	case "assignment_expression":
		return b.push(Node{
			Kind:     KindAssignment,
			Operator: "=",
			Left:     b.convert(field("left")),
			Right:    b.convert(field("right")),
		}, ts)
	case "augmented_assignment_expression":
		return b.push(Node{
			Kind:     KindAssignment,
			Operator: b.text(field("operator")),
			Left:     b.convert(field("left")),
			Right:    b.convert(field("right")),
		}, ts)
	case "ternary_expression":
		return b.push(Node{
			Kind:       KindConditional,
			Test:       b.convert(field("condition")),
			Consequent: b.convert(field("consequence")),
			Alternate:  b.convert(field("alternative")),
		}, ts)
	case "sequence_expression":
		return b.push(Node{Kind: KindSequence, List: b.list(flattenSequence(ts))}, ts)
	case "spread_element":
		return b.push(Node{Kind: KindSpread, Argument: b.convert(firstNamed(ts))}, ts)
	case "await_expression":
		return b.push(Node{Kind: KindAwait, Argument: b.convert(firstNamed(ts))}, ts)
	case "yield_expression":
		return b.push(Node{Kind: KindYield, Argument: b.convert(firstNamed(ts)), Delegate: hasToken(ts, "*")}, ts)
	case "array":
		return b.push(Node{Kind: KindArray, List: b.list(namedChildren(ts))}, ts)
	case "object":
		return b.push(Node{Kind: KindObject, List: b.properties(ts)}, ts)

	case "arrow_function":
		n := Node{Kind: KindArrowFunction, Async: hasToken(ts, "async")}
		if p := field("parameter"); p != nil {
			n.Params = []NodeID{b.pattern(p)}
		} else {
			n.Params = b.params(field("parameters"))
		}
		n.Body = b.convert(field("body"))
		return b.push(n, ts)
	case "function", "function_expression", "generator_function":
		return b.function(KindFunctionExpression, ts)
	case "function_declaration", "generator_function_declaration":
		return b.function(KindFunctionDeclaration, ts)
	case "method_definition":
		key, computed := b.key(field("name"))
		return b.push(Node{
			Kind:      KindFunctionExpression,
			Async:     hasToken(ts, "async"),
			Generator: hasToken(ts, "*"),
			Key:       key,
			Computed:  computed,
			Params:    b.params(field("parameters")),
			Body:      b.convert(field("body")),
		}, ts)
	case "class", "class_declaration", "abstract_class_declaration":
		return b.class(ts)

	case "object_pattern", "array_pattern", "assignment_pattern", "rest_pattern",
		"object_assignment_pattern", "pair_pattern", "required_parameter", "optional_parameter":
		return b.pattern(ts)

	case "expression_statement":
		return b.push(Node{Kind: KindExpressionStatement, Expression: b.convert(firstNamed(ts))}, ts)
	case "lexical_declaration", "variable_declaration":
		return b.declaration(ts)
	case "variable_declarator":
		return b.declarator(ts)
	case "statement_block", "class_body":
		return b.push(Node{Kind: KindBlock, List: b.list(namedChildren(ts))}, ts)
	case "return_statement":
		return b.push(Node{Kind: KindReturn, Argument: b.convert(firstNamed(ts))}, ts)
	case "if_statement":
		n := Node{
			Kind:       KindIf,
			Test:       b.condition(field("condition")),
			Consequent: b.convert(field("consequence")),
		}
		if alt := field("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				n.Alternate = b.convert(firstNamed(alt))
			} else {
				n.Alternate = b.convert(alt)
			}
		}
		return b.push(n, ts)
	case "while_statement":
		return b.push(Node{Kind: KindWhile, Test: b.condition(field("condition")), Body: b.convert(field("body"))}, ts)
	case "do_statement":
		return b.push(Node{Kind: KindDoWhile, Body: b.convert(field("body")), Test: b.condition(field("condition"))}, ts)
	case "for_statement":
		return b.push(Node{
			Kind:   KindFor,
			Init:   b.clause(field("initializer")),
			Test:   b.clause(field("condition")),
			Update: b.clause(field("increment")),
			Body:   b.convert(field("body")),
		}, ts)
	case "for_in_statement":
		n := Node{
			Kind:     KindForIn,
			Operator: b.text(field("operator")),
			Right:    b.convert(field("right")),
			Body:     b.convert(field("body")),
		}
		if kind := field("kind"); kind != nil {
			n.DeclKind = b.text(kind)
		} else {
			for _, tok := range []string{"const", "let", "var"} {
				if hasToken(ts, tok) {
					n.DeclKind = tok
				}
			}
		}
		if n.DeclKind != "" {
			n.Left = b.pattern(field("left"))
		} else {
			n.Left = b.convert(field("left"))
		}
		return b.push(n, ts)
	case "switch_statement":
		return b.push(Node{
			Kind: KindSwitch,
			Test: b.condition(field("value")),
			List: b.list(namedChildren(field("body"))),
		}, ts)
	case "catch_clause":
		n := Node{Kind: KindCatch, Body: b.convert(field("body"))}
		if p := field("parameter"); p != nil {
			n.Params = []NodeID{b.pattern(p)}
		}
		return b.push(n, ts)
	case "import_statement":
		return b.push(Node{Kind: KindImportDeclaration, List: b.importBindings(ts)}, ts)

	case "as_expression", "satisfies_expression":
		n := Node{Kind: KindUnknown, Expression: b.convert(firstNamed(ts))}
		if c := int(ts.NamedChildCount()); c > 1 {
			n.Annotation = b.text(ts.NamedChild(c - 1))
		}
		return b.push(n, ts)
	case "type_assertion":
		n := Node{Kind: KindUnknown, Expression: b.convert(firstNamed(ts))}
		if c := ts.NamedChildCount(); c > 0 && ts.NamedChild(0).Type() == "type_arguments" {
			n.Annotation = strings.TrimSuffix(strings.TrimPrefix(b.text(ts.NamedChild(0)), "<"), ">")
		}
		return b.push(n, ts)
	case "non_null_expression", "instantiation_expression":
		return b.push(Node{Kind: KindUnknown, Expression: b.convert(firstNamed(ts))}, ts)
	}

	return b.push(Node{Kind: KindUnknown, List: b.list(namedChildren(ts))}, ts)
}

func flattenSequence(ts *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range namedChildren(ts) {
		if c.Type() == "sequence_expression" {
			out = append(out, flattenSequence(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (b *builder) template(ts *sitter.Node) NodeID {
	n := Node{Kind: KindTemplate, Raw: b.text(ts)}
	for _, c := range namedChildren(ts) {
		if c.Type() == "template_substitution" {
			n.List = append(n.List, b.list(namedChildren(c))...)
		}
	}
	if len(n.List) == 0 && len(n.Raw) >= 2 {
		str, exact := decodeEscapes(n.Raw[1 : len(n.Raw)-1])
		n.Lit = Literal{Kind: LitString, Str: str, Inexact: !exact}
	}
	return b.push(n, ts)
}

func (b *builder) function(kind Kind, ts *sitter.Node) NodeID {
	n := Node{
		Kind:      kind,
		Async:     hasToken(ts, "async"),
		Generator: hasToken(ts, "*"),
		Ident:     b.convert(ts.ChildByFieldName("name")),
		Params:    b.params(ts.ChildByFieldName("parameters")),
		Body:      b.convert(ts.ChildByFieldName("body")),
	}
	return b.push(n, ts)
}

func (b *builder) class(ts *sitter.Node) NodeID {
	n := Node{Kind: KindClass}
	if name := ts.ChildByFieldName("name"); name != nil {
		n.Ident = b.push(Node{Kind: KindIdentifier, Name: b.text(name)}, name)
	}
	for _, c := range namedChildren(ts) {
		if c.Type() != "class_heritage" {
			continue
		}
		for _, h := range namedChildren(c) {
			if h.Type() == "extends_clause" {
				n.Super = b.convert(h.ChildByFieldName("value"))
			} else if n.Super == NoNode {
				n.Super = b.convert(h)
			}
		}
	}
	if body := ts.ChildByFieldName("body"); body != nil {
		var members []NodeID
		for _, m := range namedChildren(body) {
			switch m.Type() {
			case "field_definition", "public_field_definition":
				prop := m.ChildByFieldName("property")
				if prop == nil {
					prop = m.ChildByFieldName("name")
				}
				key, computed := b.key(prop)
				members = append(members, b.push(Node{
					Kind:     KindProperty,
					Key:      key,
					Computed: computed,
					Value:    b.convert(m.ChildByFieldName("value")),
				}, m))
			default:
				if id := b.convert(m); id != NoNode {
					members = append(members, id)
				}
			}
		}
		n.Body = b.push(Node{Kind: KindBlock, List: members}, body)
	}
	return b.push(n, ts)
}

// key converts a property key, unwrapping computed names.
func (b *builder) key(ts *sitter.Node) (NodeID, bool) {
	if ts == nil {
		return NoNode, false
	}
	if ts.Type() == "computed_property_name" {
		return b.convert(firstNamed(ts)), true
	}
	return b.convert(ts), false
}

func (b *builder) properties(ts *sitter.Node) []NodeID {
	var out []NodeID
	for _, c := range namedChildren(ts) {
		switch c.Type() {
		case "pair":
			key, computed := b.key(c.ChildByFieldName("key"))
			out = append(out, b.push(Node{
				Kind:     KindProperty,
				Key:      key,
				Computed: computed,
				Value:    b.convert(c.ChildByFieldName("value")),
			}, c))
		case "shorthand_property_identifier":
			value := b.convert(c)
			out = append(out, b.push(Node{Kind: KindProperty, Value: value, Shorthand: true}, c))
		default:
			if id := b.convert(c); id != NoNode {
				out = append(out, id)
			}
		}
	}
	return out
}

func (b *builder) params(ts *sitter.Node) []NodeID {
	var out []NodeID
	for _, c := range namedChildren(ts) {
		if id := b.pattern(c); id != NoNode {
			out = append(out, id)
		}
	}
	return out
}

// pattern converts a binding or assignment target.
func (b *builder) pattern(ts *sitter.Node) NodeID {
	if ts == nil {
		return NoNode
	}
	switch ts.Type() {
	case "object_pattern":
		var list []NodeID
		for _, c := range namedChildren(ts) {
			if id := b.pattern(c); id != NoNode {
				list = append(list, id)
			}
		}
		return b.push(Node{Kind: KindObjectPattern, List: list}, ts)
	case "array_pattern":
		var list []NodeID
		for _, c := range namedChildren(ts) {
			if id := b.pattern(c); id != NoNode {
				list = append(list, id)
			}
		}
		return b.push(Node{Kind: KindArrayPattern, List: list}, ts)
	case "pair_pattern":
		key, computed := b.key(ts.ChildByFieldName("key"))
		return b.push(Node{
			Kind:     KindProperty,
			Key:      key,
			Computed: computed,
			Value:    b.pattern(ts.ChildByFieldName("value")),
		}, ts)
	case "assignment_pattern", "object_assignment_pattern":
		return b.push(Node{
			Kind:  KindAssignmentPattern,
			Left:  b.pattern(ts.ChildByFieldName("left")),
			Right: b.convert(ts.ChildByFieldName("right")),
		}, ts)
	case "rest_pattern":
		return b.push(Node{Kind: KindRest, Argument: b.pattern(firstNamed(ts))}, ts)
	case "required_parameter", "optional_parameter":
		target := b.pattern(ts.ChildByFieldName("pattern"))
		if target != NoNode {
			b.t.nodes[target].Annotation = b.annotation(ts)
		}
		if value := ts.ChildByFieldName("value"); value != nil {
			return b.push(Node{Kind: KindAssignmentPattern, Left: target, Right: b.convert(value)}, ts)
		}
		return target
	}
	return b.convert(ts)
}

func (b *builder) declaration(ts *sitter.Node) NodeID {
	n := Node{Kind: KindVariableDeclaration}
	if ts.ChildCount() > 0 {
		n.DeclKind = ts.Child(0).Type()
	}
	if kind := ts.ChildByFieldName("kind"); kind != nil {
		n.DeclKind = b.text(kind)
	}
	for _, c := range namedChildren(ts) {
		if c.Type() == "variable_declarator" {
			n.List = append(n.List, b.declarator(c))
		}
	}
	return b.push(n, ts)
}

func (b *builder) declarator(ts *sitter.Node) NodeID {
	name := ts.ChildByFieldName("name")
	if name == nil {
		name = ts.ChildByFieldName("id")
	}
	return b.push(Node{
		Kind:       KindVariableDeclarator,
		Ident:      b.pattern(name),
		Init:       b.convert(ts.ChildByFieldName("value")),
		Annotation: b.annotation(ts),
	}, ts)
}

// annotation returns the text of a type annotation without its colon.
func (b *builder) annotation(ts *sitter.Node) string {
	typ := ts.ChildByFieldName("type")
	if typ == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(b.text(typ), ":"))
}

func (b *builder) importBindings(ts *sitter.Node) []NodeID {
	var out []NodeID
	var visit func(*sitter.Node)
	visit = func(c *sitter.Node) {
		switch c.Type() {
		case "identifier":
			out = append(out, b.convert(c))
			return
		case "import_specifier":
			target := c.ChildByFieldName("alias")
			if target == nil {
				target = c.ChildByFieldName("name")
			}
			if target != nil && target.Type() == "identifier" {
				out = append(out, b.convert(target))
			}
			return
		case "string":
			return
		}
		for _, k := range namedChildren(c) {
			visit(k)
		}
	}
	for _, c := range namedChildren(ts) {
		if c.Type() == "import_clause" {
			visit(c)
		}
	}
	return out
}

// parseNumber decodes a JavaScript numeric literal to the nearest float64,
// as the language does. Literals that do not decode are marked Inexact.
func parseNumber(raw string) Literal {
	clean := strings.ReplaceAll(raw, "_", "")
	if strings.HasSuffix(clean, "n") {
		return Literal{Kind: LitBigInt, Str: strings.TrimSuffix(clean, "n")}
	}
	lower := strings.ToLower(clean)
	digits, base := "", 0
	switch {
	case strings.HasPrefix(lower, "0x"):
		digits, base = lower[2:], 16
	case strings.HasPrefix(lower, "0o"):
		digits, base = lower[2:], 8
	case strings.HasPrefix(lower, "0b"):
		digits, base = lower[2:], 2
	case len(clean) > 1 && clean[0] == '0' && isOctalDigits(clean[1:]):
		digits, base = clean[1:], 8 // legacy octal
	}
	if base != 0 {
		i, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return Literal{Kind: LitNumber, Inexact: true}
		}
		v, _ := new(big.Float).SetInt(i).Float64()
		return Literal{Kind: LitNumber, Num: v}
	}
	// a leading zero with an 8 or 9 digit reads as decimal
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			// overflow to ±Inf and underflow to 0 match the language
			return Literal{Kind: LitNumber, Num: v}
		}
		return Literal{Kind: LitNumber, Inexact: true}
	}
	return Literal{Kind: LitNumber, Num: v}
}

func isOctalDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '7' {
			return false
		}
	}
	return s != ""
}

func unquote(raw string) Literal {
	if len(raw) < 2 {
		return Literal{Kind: LitString, Str: raw}
	}
	str, exact := decodeEscapes(raw[1 : len(raw)-1])
	return Literal{Kind: LitString, Str: str, Inexact: !exact}
}

// decodeEscapes cooks JavaScript string escapes. Surrogate pair escapes are
// joined; exact is false when the result cannot hold the value, as with a
// lone surrogate or a legacy octal escape.
func decodeEscapes(s string) (cooked string, exact bool) {
	if !strings.Contains(s, `\`) {
		return s, true
	}
	d := &escapeDecoder{high: -1, exact: true}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			d.writeByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			d.writeByte('\n')
		case 't':
			d.writeByte('\t')
		case 'r':
			d.writeByte('\r')
		case 'b':
			d.writeByte('\b')
		case 'f':
			d.writeByte('\f')
		case 'v':
			d.writeByte('\v')
		case '\n':
			// line continuation
		case '0':
			if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
				d.exact = false
			}
			d.writeByte(0)
		case '1', '2', '3', '4', '5', '6', '7':
			d.exact = false
			d.writeByte(s[i])
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 32); err == nil {
					d.unit(rune(v))
					i += 2
					continue
				}
			}
			d.writeByte('x')
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				if end := strings.IndexByte(s[i:], '}'); end > 0 {
					if v, err := strconv.ParseUint(s[i+2:i+end], 16, 32); err == nil && v <= unicode.MaxRune {
						d.unit(rune(v))
						i += end
						continue
					}
				}
			} else if i+4 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					d.unit(rune(v))
					i += 4
					continue
				}
			}
			d.writeByte('u')
		default:
			d.writeByte(s[i])
		}
	}
	d.flush()
	return d.sb.String(), d.exact
}

// escapeDecoder accumulates cooked string content, pairing UTF-16
// surrogates that arrive as separate escapes.
type escapeDecoder struct {
	sb    strings.Builder
	high  rune // pending high surrogate, -1 when none
	exact bool
}

func (d *escapeDecoder) flush() {
	if d.high >= 0 {
		d.sb.WriteRune(utf8.RuneError)
		d.exact = false
		d.high = -1
	}
}

func (d *escapeDecoder) writeByte(c byte) {
	d.flush()
	d.sb.WriteByte(c)
}

func (d *escapeDecoder) unit(r rune) {
	switch {
	case r >= 0xD800 && r < 0xDC00:
		d.flush()
		d.high = r
	case r >= 0xDC00 && r < 0xE000:
		if d.high < 0 {
			d.sb.WriteRune(utf8.RuneError)
			d.exact = false
			return
		}
		d.sb.WriteRune(utf16.DecodeRune(d.high, r))
		d.high = -1
	default:
		d.flush()
		d.sb.WriteRune(r)
	}
}
