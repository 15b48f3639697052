// Package typeinfo is the query layer over a type oracle. Oracle failures
// never escape it: they read as "unknown", which callers treat as a
// non-match.
package typeinfo

import (
	"errors"

	"github.com/termfx/pegasus/internal/ast"
)

// ErrNoType is returned by an Oracle that has no type for a node.
var ErrNoType = errors.New("no type information")

// Flags mirror the TypeScript type flags this tool inspects.
type Flags uint32

const (
	Any Flags = 1 << iota
	Unknown
	Number
	NumberLiteral
	String
	StringLiteral
	Boolean
	BooleanLiteral
	BigInt
	Null
	Undefined
	Object
	Array
	Union
)

// Type is a resolved type. Union types list their members in Types.
type Type struct {
	Flags Flags
	Types []*Type
	Elem  *Type // element type of arrays, nil when unknown
}

var (
	anyType       = &Type{Flags: Any}
	numberType    = &Type{Flags: Number}
	stringType    = &Type{Flags: String}
	booleanType   = &Type{Flags: Boolean}
	undefinedType = &Type{Flags: Undefined}
	nullType      = &Type{Flags: Null}
	objectType    = &Type{Flags: Object}
)

// ArrayOf returns an array type with elem elements.
func ArrayOf(elem *Type) *Type { return &Type{Flags: Object | Array, Elem: elem} }

// UnionOf builds a union, flattening nested unions. A single member is
// returned as is.
func UnionOf(types ...*Type) *Type {
	var parts []*Type
	for _, t := range types {
		if t == nil {
			continue
		}
		if t.Flags&Union != 0 {
			parts = append(parts, t.Types...)
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return &Type{Flags: Union, Types: parts}
}

// Has reports whether any of f is set on the type itself. Union members
// are not inspected.
func (t *Type) Has(f Flags) bool { return t != nil && t.Flags&f != 0 }

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t.Has(Array) }

// Parts returns the union members of t, or t itself.
func (t *Type) Parts() []*Type {
	if t == nil {
		return nil
	}
	if t.Flags&Union != 0 {
		return t.Types
	}
	return []*Type{t}
}

// Widen converts literal types to their base primitive.
func (t *Type) Widen() *Type {
	switch {
	case t == nil:
		return nil
	case t.Flags&NumberLiteral != 0:
		return numberType
	case t.Flags&StringLiteral != 0:
		return stringType
	case t.Flags&BooleanLiteral != 0:
		return booleanType
	case t.Flags&Union != 0:
		parts := make([]*Type, len(t.Types))
		for i, p := range t.Types {
			parts[i] = p.Widen()
		}
		return UnionOf(parts...)
	}
	return t
}

// Oracle answers type queries for nodes of one file.
type Oracle interface {
	ConstrainedType(n *ast.Node) (*Type, error)
}

// Helper wraps an Oracle with the questions rules ask. A nil Helper or one
// without an oracle answers "unknown" everywhere.
type Helper struct {
	oracle Oracle
	local  bool // oracle only sees the current file
}

// NewHelper returns a Helper over a type checker o. o may be nil.
func NewHelper(o Oracle) *Helper {
	return &Helper{oracle: o}
}

// NewLocalHelper returns a Helper over the file-local Inferer. Its "any"
// answers mean the file alone does not tell, not that the type is any.
func NewLocalHelper(in *Inferer) *Helper {
	return &Helper{oracle: in, local: true}
}

// Available reports whether an oracle is attached.
func (h *Helper) Available() bool { return h != nil && h.oracle != nil }

// Checked reports whether the oracle is a type checker that sees the whole
// program, so that a type it cannot prove is a type that does not hold.
func (h *Helper) Checked() bool { return h.Available() && !h.local }

func (h *Helper) typeOf(n *ast.Node) *Type {
	if !h.Available() || n == nil {
		return nil
	}
	t, err := h.oracle.ConstrainedType(n)
	if err != nil {
		return nil
	}
	return t
}

// IsArrayOrUnionOfArrays reports whether n is typed as an array, or a union
// made only of arrays.
func (h *Helper) IsArrayOrUnionOfArrays(n *ast.Node) bool {
	t := h.typeOf(n)
	if t == nil {
		return false
	}
	for _, p := range t.Parts() {
		if !p.IsArray() {
			return false
		}
	}
	return true
}

// IsKnownNonArray reports whether n has a resolved type with a member that
// is not an array. Any and unknown types are not resolved.
func (h *Helper) IsKnownNonArray(n *ast.Node) bool {
	t := h.typeOf(n)
	if t == nil {
		return false
	}
	nonArray := false
	for _, p := range t.Parts() {
		if p.Has(Any | Unknown) {
			return false
		}
		if !p.IsArray() {
			nonArray = true
		}
	}
	return nonArray
}

// IsNumber reports whether n has exactly the number type. Literal number
// types and unions do not qualify.
func (h *Helper) IsNumber(n *ast.Node) bool {
	return h.typeOf(n).Has(Number)
}

// IsAny reports whether n is typed any.
func (h *Helper) IsAny(n *ast.Node) bool {
	return h.typeOf(n).Has(Any)
}
