// Package scope resolves lexical scopes, variables and identifier references
// over an ast.Tree.
package scope

import (
	"github.com/termfx/pegasus/internal/ast"
)

// Kind classifies the kind of scope.
type Kind int

const (
	Global Kind = iota
	Function
	FunctionExpressionName
	Block
	For
	Switch
	Catch
	Class
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case Function:
		return "function"
	case FunctionExpressionName:
		return "function-expression-name"
	case Block:
		return "block"
	case For:
		return "for"
	case Switch:
		return "switch"
	case Catch:
		return "catch"
	case Class:
		return "class"
	default:
		return "unknown"
	}
}

// DefKind classifies how a variable was introduced.
type DefKind int

const (
	DefVar DefKind = iota
	DefLet
	DefConst
	DefParam
	DefFunctionName
	DefClassName
	DefImport
	DefCatch
)

// Definition is one declaration site of a variable.
type Definition struct {
	Kind DefKind
	Name *ast.Node // the binding identifier
	Node *ast.Node // declarator, function, class, catch clause or import
}

// Variable is a named binding in a scope. Variables without definitions are
// implicit, such as the arguments object of a function.
type Variable struct {
	Name        string
	Scope       *Scope
	Defs        []Definition
	References  []*Reference
	Identifiers []*ast.Node
}

// Implicit reports whether the variable has no declaration site.
func (v *Variable) Implicit() bool { return len(v.Defs) == 0 }

// Reference is one use of an identifier.
type Reference struct {
	Identifier *ast.Node
	From       *Scope
	Resolved   *Variable
	Read       bool
	Write      bool
	Init       bool
}

// Scope is a lexical scope introduced by Block.
type Scope struct {
	Kind      Kind
	Block     *ast.Node
	Parent    *Scope
	Children  []*Scope
	Variables map[string]*Variable
	Order     []*Variable
	// References lists references occurring directly in this scope.
	References []*Reference
	// Through lists references that could not be resolved in this scope or
	// any of its ancestors. Only populated on the global scope.
	Through []*Reference
	// ThisFound is set on function scopes whose own this binding is used.
	ThisFound bool
}

func newScope(kind Kind, block *ast.Node, parent *Scope) *Scope {
	s := &Scope{
		Kind:      kind,
		Block:     block,
		Parent:    parent,
		Variables: make(map[string]*Variable),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

func (s *Scope) define(name string) *Variable {
	if v, ok := s.Variables[name]; ok {
		return v
	}
	v := &Variable{Name: name, Scope: s}
	s.Variables[name] = v
	s.Order = append(s.Order, v)
	return v
}

// Lookup resolves a variable by walking the parent chain.
// Returns nil if the name is not declared.
func (s *Scope) Lookup(name string) *Variable {
	for scope := s; scope != nil; scope = scope.Parent {
		if v, ok := scope.Variables[name]; ok {
			return v
		}
	}
	return nil
}

// LookupLocal resolves a variable only in this scope.
func (s *Scope) LookupLocal(name string) *Variable {
	return s.Variables[name]
}

// VariableScope returns the nearest function or global scope, where var
// declarations land.
func (s *Scope) VariableScope() *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind == Function || scope.Kind == Global {
			return scope
		}
	}
	return s
}

// FindVariable looks up name starting at s.
func FindVariable(s *Scope, name string) *Variable {
	if s == nil {
		return nil
	}
	return s.Lookup(name)
}

// FindVariableOf looks up the variable an identifier node names, starting at s.
func FindVariableOf(s *Scope, ident *ast.Node) *Variable {
	if ident == nil || ident.Kind != ast.KindIdentifier {
		return nil
	}
	return FindVariable(s, ident.Name)
}
