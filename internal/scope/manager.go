package scope

import (
	"github.com/termfx/pegasus/internal/ast"
)

// Manager holds the scope tree of one file.
type Manager struct {
	tree     *ast.Tree
	global   *Scope
	scopes   []*Scope
	byNode   map[ast.NodeID]*Scope
	nameOf   map[ast.NodeID]*Scope
	refs     map[ast.NodeID]*Reference
	bindings map[ast.NodeID]*Variable
}

// Global returns the program scope.
func (m *Manager) Global() *Scope { return m.global }

// Scopes returns every scope in creation order.
func (m *Manager) Scopes() []*Scope { return m.scopes }

// Acquire returns the scope introduced by n, or nil. For named function
// expressions the function scope is returned, not the scope holding the
// function's own name.
func (m *Manager) Acquire(n *ast.Node) *Scope {
	if n == nil {
		return nil
	}
	return m.byNode[n.ID]
}

// ScopeFor returns the innermost scope containing n.
func (m *Manager) ScopeFor(n *ast.Node) *Scope {
	for cur := n; cur != nil; cur = m.tree.Parent(cur) {
		if s, ok := m.byNode[cur.ID]; ok {
			return s
		}
	}
	return m.global
}

// Reference returns the reference recorded for an identifier node.
func (m *Manager) Reference(ident *ast.Node) *Reference {
	if ident == nil {
		return nil
	}
	return m.refs[ident.ID]
}

// Declared returns the variable an identifier declares, if it is a binding.
func (m *Manager) Declared(ident *ast.Node) *Variable {
	if ident == nil {
		return nil
	}
	return m.bindings[ident.ID]
}

type role uint8

const (
	roleRead role = iota
	roleDeclare
	roleDeclareInit
	roleWrite
	roleReadWrite
)

type analyzer struct {
	m     *Manager
	tree  *ast.Tree
	stack []*Scope
	roles map[ast.NodeID]role
	// opened records which nodes pushed scopes, so leave can pop them.
	opened map[ast.NodeID]int
	// bodies are blocks that belong to a function or class and open no scope.
	bodies map[ast.NodeID]bool
	all    []*Reference
}

// Analyze builds the scope tree and resolves every reference of tree.
func Analyze(tree *ast.Tree) *Manager {
	m := &Manager{
		tree:     tree,
		byNode:   make(map[ast.NodeID]*Scope),
		nameOf:   make(map[ast.NodeID]*Scope),
		refs:     make(map[ast.NodeID]*Reference),
		bindings: make(map[ast.NodeID]*Variable),
	}
	a := &analyzer{
		m:      m,
		tree:   tree,
		roles:  make(map[ast.NodeID]role),
		opened: make(map[ast.NodeID]int),
		bodies: make(map[ast.NodeID]bool),
	}
	tree.Inspect(tree.Root(), a.enter, a.leave)
	a.resolve()
	return m
}

func (a *analyzer) current() *Scope { return a.stack[len(a.stack)-1] }

func (a *analyzer) push(kind Kind, block *ast.Node) *Scope {
	var parent *Scope
	if len(a.stack) > 0 {
		parent = a.current()
	}
	s := newScope(kind, block, parent)
	a.stack = append(a.stack, s)
	a.opened[block.ID]++
	a.m.scopes = append(a.m.scopes, s)
	if kind == FunctionExpressionName {
		a.m.nameOf[block.ID] = s
	} else {
		a.m.byNode[block.ID] = s
	}
	if kind == Global {
		a.m.global = s
	}
	return s
}

func (a *analyzer) leave(n *ast.Node) {
	for i := a.opened[n.ID]; i > 0; i-- {
		a.stack = a.stack[:len(a.stack)-1]
	}
}

func (a *analyzer) enter(n *ast.Node) bool {
	t := a.tree
	switch n.Kind {
	case ast.KindProgram:
		a.push(Global, n)

	case ast.KindFunctionDeclaration, ast.KindFunctionExpression, ast.KindArrowFunction:
		if id := t.Get(n.Ident); id != nil {
			if n.Kind == ast.KindFunctionDeclaration {
				a.declare(a.current(), id, DefFunctionName, n)
			} else {
				a.declare(a.push(FunctionExpressionName, n), id, DefFunctionName, n)
			}
		}
		fn := a.push(Function, n)
		if n.Kind != ast.KindArrowFunction {
			fn.define("arguments")
		}
		for _, p := range n.Params {
			a.bindPattern(fn, t.Get(p), DefParam, n, roleDeclare)
		}
		if body := t.Get(n.Body); body != nil && body.Kind == ast.KindBlock {
			a.bodies[body.ID] = true
		}

	case ast.KindClass:
		id := t.Get(n.Ident)
		if id != nil && n.Type != "class" {
			a.declare(a.current(), id, DefClassName, n)
		}
		cls := a.push(Class, n)
		if id != nil {
			v := cls.define(id.Name)
			v.Defs = append(v.Defs, Definition{Kind: DefClassName, Name: id, Node: n})
			v.Identifiers = append(v.Identifiers, id)
			a.roles[id.ID] = roleDeclare
		}
		if body := t.Get(n.Body); body != nil {
			a.bodies[body.ID] = true
		}

	case ast.KindBlock:
		if !a.bodies[n.ID] {
			a.push(Block, n)
		}

	case ast.KindFor:
		if init := t.Get(n.Init); init != nil && init.Kind == ast.KindVariableDeclaration && init.DeclKind != "var" {
			a.push(For, n)
		}

	case ast.KindForIn:
		if n.DeclKind != "" && n.DeclKind != "var" {
			a.push(For, n)
		}
		left := t.Get(n.Left)
		switch {
		case n.DeclKind != "":
			target := a.current()
			kind := declKind(n.DeclKind)
			if kind == DefVar {
				target = target.VariableScope()
			}
			a.bindPattern(target, left, kind, n, roleDeclareInit)
		default:
			a.markTargets(left, roleWrite)
		}

	case ast.KindSwitch:
		a.push(Switch, n)

	case ast.KindCatch:
		c := a.push(Catch, n)
		for _, p := range n.Params {
			a.bindPattern(c, t.Get(p), DefCatch, n, roleDeclare)
		}

	case ast.KindVariableDeclaration:
		kind := declKind(n.DeclKind)
		target := a.current()
		if kind == DefVar {
			target = target.VariableScope()
		}
		for _, d := range n.List {
			decl := t.Get(d)
			if decl == nil {
				continue
			}
			r := roleDeclare
			if decl.Init != ast.NoNode {
				r = roleDeclareInit
			}
			a.bindPattern(target, t.Get(decl.Ident), kind, decl, r)
		}

	case ast.KindImportDeclaration:
		for _, id := range n.List {
			a.declare(a.current(), t.Get(id), DefImport, n)
		}

	case ast.KindAssignment:
		r := roleWrite
		if n.Operator != "=" {
			r = roleReadWrite
		}
		a.markTargets(t.Get(n.Left), r)

	case ast.KindUpdate:
		if arg := t.Get(n.Argument); arg != nil && arg.Kind == ast.KindIdentifier {
			a.roles[arg.ID] = roleReadWrite
		}

	case ast.KindThis:
		for s := a.current(); s != nil; s = s.Parent {
			if s.Kind == Function && s.Block.Kind != ast.KindArrowFunction {
				s.ThisFound = true
				break
			}
		}

	case ast.KindIdentifier:
		a.identifier(n)
	}
	return true
}

func declKind(kind string) DefKind {
	switch kind {
	case "let":
		return DefLet
	case "const":
		return DefConst
	}
	return DefVar
}

func (a *analyzer) declare(s *Scope, id *ast.Node, kind DefKind, node *ast.Node) {
	if id == nil || id.Kind != ast.KindIdentifier {
		return
	}
	v := s.define(id.Name)
	v.Defs = append(v.Defs, Definition{Kind: kind, Name: id, Node: node})
	v.Identifiers = append(v.Identifiers, id)
	a.m.bindings[id.ID] = v
	if _, ok := a.roles[id.ID]; !ok {
		a.roles[id.ID] = roleDeclare
	}
}

// bindPattern declares every binding identifier of a pattern.
func (a *analyzer) bindPattern(s *Scope, p *ast.Node, kind DefKind, node *ast.Node, r role) {
	for _, id := range a.patternTargets(p) {
		a.roles[id.ID] = r
		a.declare(s, id, kind, node)
	}
}

// markTargets assigns a write role to identifiers in an assignment target.
func (a *analyzer) markTargets(p *ast.Node, r role) {
	for _, id := range a.patternTargets(p) {
		a.roles[id.ID] = r
	}
}

// patternTargets returns the identifiers bound by a pattern, skipping
// default values, computed keys and member targets.
func (a *analyzer) patternTargets(p *ast.Node) []*ast.Node {
	t := a.tree
	if p == nil {
		return nil
	}
	switch p.Kind {
	case ast.KindIdentifier:
		return []*ast.Node{p}
	case ast.KindObjectPattern, ast.KindArrayPattern, ast.KindObject, ast.KindArray:
		var out []*ast.Node
		for _, id := range p.List {
			out = append(out, a.patternTargets(t.Get(id))...)
		}
		return out
	case ast.KindProperty:
		return a.patternTargets(t.Get(p.Value))
	case ast.KindAssignmentPattern:
		return a.patternTargets(t.Get(p.Left))
	case ast.KindRest, ast.KindSpread:
		return a.patternTargets(t.Get(p.Argument))
	case ast.KindUnknown:
		return a.patternTargets(t.Get(p.Expression))
	}
	return nil
}

func isReferenceType(typ string) bool {
	switch typ {
	case "identifier", "undefined", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern":
		return true
	}
	return false
}

func (a *analyzer) identifier(n *ast.Node) {
	r, marked := a.roles[n.ID]
	if !marked && !isReferenceType(n.Type) {
		return
	}
	if r == roleDeclare {
		return
	}
	parent := a.tree.Parent(n)
	if parent != nil && !marked {
		switch parent.Kind {
		case ast.KindMember:
			if parent.Property == n.ID && !parent.Computed {
				return
			}
		case ast.KindProperty:
			if parent.Key == n.ID && !parent.Computed {
				return
			}
		case ast.KindFunctionExpression:
			if parent.Key == n.ID && !parent.Computed {
				return
			}
		}
	}
	ref := &Reference{
		Identifier: n,
		From:       a.current(),
		Read:       r == roleRead || r == roleReadWrite,
		Write:      r == roleWrite || r == roleReadWrite || r == roleDeclareInit,
		Init:       r == roleDeclareInit,
	}
	ref.From.References = append(ref.From.References, ref)
	a.m.refs[n.ID] = ref
	a.all = append(a.all, ref)
}

func (a *analyzer) resolve() {
	for _, ref := range a.all {
		v := ref.From.Lookup(ref.Identifier.Name)
		if v == nil {
			a.m.global.Through = append(a.m.global.Through, ref)
			continue
		}
		ref.Resolved = v
		v.References = append(v.References, ref)
	}
}
