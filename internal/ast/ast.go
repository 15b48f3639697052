// Package ast holds an arena-indexed ESTree-shaped syntax tree built from a
// tree-sitter parse of JavaScript or TypeScript source.
//
// Nodes are addressed by NodeID. Parent linkage lives in a lookup table on the
// Tree; nodes never point at each other directly.
package ast

import (
	"sort"
)

// NodeID identifies a node inside its Tree. The zero value means "no node".
type NodeID int32

// NoNode is the absent node handle.
const NoNode NodeID = 0

// Kind is the ESTree-like tag of a node.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindProgram
	KindExpressionStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindFunctionDeclaration
	KindFunctionExpression
	KindArrowFunction
	KindClass
	KindBlock
	KindReturn
	KindIf
	KindWhile
	KindDoWhile
	KindFor
	KindForIn
	KindSwitch
	KindCatch
	KindImportDeclaration
	KindCall
	KindNew
	KindMember
	KindIdentifier
	KindPrivateIdentifier
	KindLiteral
	KindTemplate
	KindTaggedTemplate
	KindUnary
	KindUpdate
	KindBinary
	KindLogical
	KindAssignment
	KindConditional
	KindSequence
	KindSpread
	KindArray
	KindObject
	KindProperty
	KindObjectPattern
	KindArrayPattern
	KindAssignmentPattern
	KindRest
	KindThis
	KindSuper
	KindAwait
	KindYield
	KindImport
)

var kindNames = [...]string{
	KindUnknown:             "Unknown",
	KindProgram:             "Program",
	KindExpressionStatement: "ExpressionStatement",
	KindVariableDeclaration: "VariableDeclaration",
	KindVariableDeclarator:  "VariableDeclarator",
	KindFunctionDeclaration: "FunctionDeclaration",
	KindFunctionExpression:  "FunctionExpression",
	KindArrowFunction:       "ArrowFunctionExpression",
	KindClass:               "Class",
	KindBlock:               "BlockStatement",
	KindReturn:              "ReturnStatement",
	KindIf:                  "IfStatement",
	KindWhile:               "WhileStatement",
	KindDoWhile:             "DoWhileStatement",
	KindFor:                 "ForStatement",
	KindForIn:               "ForInStatement",
	KindSwitch:              "SwitchStatement",
	KindCatch:               "CatchClause",
	KindImportDeclaration:   "ImportDeclaration",
	KindCall:                "CallExpression",
	KindNew:                 "NewExpression",
	KindMember:              "MemberExpression",
	KindIdentifier:          "Identifier",
	KindPrivateIdentifier:   "PrivateIdentifier",
	KindLiteral:             "Literal",
	KindTemplate:            "TemplateLiteral",
	KindTaggedTemplate:      "TaggedTemplateExpression",
	KindUnary:               "UnaryExpression",
	KindUpdate:              "UpdateExpression",
	KindBinary:              "BinaryExpression",
	KindLogical:             "LogicalExpression",
	KindAssignment:          "AssignmentExpression",
	KindConditional:         "ConditionalExpression",
	KindSequence:            "SequenceExpression",
	KindSpread:              "SpreadElement",
	KindArray:               "ArrayExpression",
	KindObject:              "ObjectExpression",
	KindProperty:            "Property",
	KindObjectPattern:       "ObjectPattern",
	KindArrayPattern:        "ArrayPattern",
	KindAssignmentPattern:   "AssignmentPattern",
	KindRest:                "RestElement",
	KindThis:                "ThisExpression",
	KindSuper:               "Super",
	KindAwait:               "AwaitExpression",
	KindYield:               "YieldExpression",
	KindImport:              "ImportExpression",
}

// String returns the ESTree-style name of the kind. These names double as
// listener selectors.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// KindByName resolves a selector name back to its Kind.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindUnknown, false
}

// Range is a half-open byte span [Start, End) in the source text.
type Range struct {
	Start int
	End   int
}

// Len returns the byte length of the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool { return r.Start <= o.Start && o.End <= r.End }

// Overlaps reports whether the two ranges share at least one byte.
func (r Range) Overlaps(o Range) bool { return r.Start < o.End && o.Start < r.End }

// LiteralKind tags the runtime type of a Literal.
type LiteralKind uint8

const (
	LitString LiteralKind = iota + 1
	LitNumber
	LitBoolean
	LitNull
	LitRegex
	LitBigInt
)

// Literal is the decoded value of a Literal node.
type Literal struct {
	Kind LiteralKind
	Num  float64
	Str  string
	Bool bool

	// Inexact marks a Num or Str that does not hold the value the source
	// denotes, such as a string with a lone surrogate escape. Inexact
	// literals are never folded.
	Inexact bool
}

// Node is one arena entry. Handle fields set to NoNode are absent.
type Node struct {
	ID    NodeID
	Kind  Kind
	Type  string // originating tree-sitter node type
	Range Range

	Name     string // Identifier, PrivateIdentifier
	Operator string // Unary, Update, Binary, Logical, Assignment
	Raw      string // Literal, Template
	Lit      Literal
	DeclKind string // VariableDeclaration, ForIn: var, let, const
	// Annotation is the TypeScript type written on a binding or assertion.
	Annotation string

	Expression NodeID // ExpressionStatement
	Callee     NodeID // Call, New, TaggedTemplate
	Object     NodeID // Member
	Property   NodeID // Member
	Argument   NodeID // Unary, Update, Spread, Await, Yield, Return, Rest
	Left       NodeID // Binary, Logical, Assignment, AssignmentPattern, ForIn
	Right      NodeID
	Test       NodeID // If, While, DoWhile, For, Conditional, Switch
	Consequent NodeID
	Alternate  NodeID
	Init       NodeID // VariableDeclarator, For
	Update     NodeID // For
	Body       NodeID // functions, loops, Catch, Class
	Ident      NodeID // declared name of functions, classes, declarators
	Super      NodeID // Class heritage
	Key        NodeID // Property, methods
	Value      NodeID // Property
	Quasi      NodeID // TaggedTemplate

	Arguments []NodeID // Call, New
	Params    []NodeID // functions, Catch
	List      []NodeID // Program/Block body, Sequence, Array, Object, Template, declarations, patterns

	Computed  bool
	Optional  bool
	Prefix    bool
	Async     bool
	Generator bool
	Shorthand bool
	Delegate  bool
}

// IsFunction reports whether the node is any function form.
func (n *Node) IsFunction() bool {
	switch n.Kind {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction:
		return true
	}
	return false
}

// Tree is a parsed file.
type Tree struct {
	Source   []byte
	Language Language
	Errors   []SyntaxError

	nodes    []Node
	parents  []NodeID
	children [][]NodeID
	parens   [][]Range
	tokens   []Token
	lines    []int
	root     NodeID
}

// Root returns the Program node.
func (t *Tree) Root() *Node { return t.Get(t.root) }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Get resolves a handle. It returns nil for NoNode or foreign handles.
func (t *Tree) Get(id NodeID) *Node {
	if id <= NoNode || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Parent returns the structural parent of n, or nil at the root.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil {
		return nil
	}
	return t.Get(t.parents[n.ID])
}

// Children returns the direct children of n in document order.
func (t *Tree) Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	ids := t.children[n.ID]
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, &t.nodes[id])
	}
	return out
}

// Text returns the source text of n without surrounding grouping parens.
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return string(t.Source[n.Range.Start:n.Range.End])
}

// Slice returns the source text of an arbitrary range.
func (t *Tree) Slice(r Range) string {
	return string(t.Source[r.Start:r.End])
}

// Parens returns the grouping parenthesis layers around n, innermost first.
// Syntactic parens (if/while conditions, call argument lists) are not
// included.
func (t *Tree) Parens(n *Node) []Range {
	if n == nil {
		return nil
	}
	return t.parens[n.ID]
}

// Position converts a byte offset to a 1-based line and column.
func (t *Tree) Position(offset int) (line, col int) {
	i := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - t.lines[i] + 1
}

// IsIdentifierNamed reports whether n is an identifier with the given name.
func IsIdentifierNamed(n *Node, name string) bool {
	return n != nil && n.Kind == KindIdentifier && n.Name == name
}
