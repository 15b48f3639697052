package match

import (
	"slices"
	"strings"

	"github.com/termfx/pegasus/internal/ast"
)

func callLike(t *ast.Tree, n *ast.Node, spec CallSpec) bool {
	if spec.Optional != Any && n.Kind == ast.KindCall && !spec.Optional.accepts(n.Optional) {
		return false
	}

	count := len(n.Arguments)
	if spec.ArgumentsLength != Unbounded && count != spec.ArgumentsLength {
		return false
	}
	if spec.MinArguments > 0 && count < spec.MinArguments {
		return false
	}
	if spec.MaxArguments != Unbounded && count > spec.MaxArguments {
		return false
	}

	if !spec.AllowSpread {
		limit := spec.MaxArguments
		if limit == Unbounded {
			limit = spec.ArgumentsLength
		}
		if limit != Unbounded {
			for i, id := range n.Arguments {
				if i < limit && t.Get(id).Kind == ast.KindSpread {
					return false
				}
			}
		}
	}

	if len(spec.Names) > 0 {
		callee := t.Get(n.Callee)
		if callee == nil || callee.Kind != ast.KindIdentifier || !slices.Contains(spec.Names, callee.Name) {
			return false
		}
	}
	return true
}

// IsCall reports whether n is a call expression matching spec.
func IsCall(t *ast.Tree, n *ast.Node, spec CallSpec) bool {
	return n != nil && n.Kind == ast.KindCall && callLike(t, n, spec)
}

// IsNew reports whether n is a new expression matching spec.
func IsNew(t *ast.Tree, n *ast.Node, spec CallSpec) bool {
	return n != nil && n.Kind == ast.KindNew && callLike(t, n, spec)
}

// IsCallOrNew reports whether n is a call or new expression matching spec.
func IsCallOrNew(t *ast.Tree, n *ast.Node, spec CallSpec) bool {
	return n != nil && (n.Kind == ast.KindCall || n.Kind == ast.KindNew) && callLike(t, n, spec)
}

// IsMember reports whether n is a member expression matching spec.
func IsMember(t *ast.Tree, n *ast.Node, spec MemberSpec) bool {
	if n == nil || n.Kind != ast.KindMember {
		return false
	}
	if !spec.Optional.accepts(n.Optional) {
		return false
	}
	if len(spec.Properties) > 0 {
		prop := t.Get(n.Property)
		if prop == nil || prop.Kind != ast.KindIdentifier || !slices.Contains(spec.Properties, prop.Name) {
			return false
		}
	}
	if !spec.Computed.accepts(n.Computed) {
		return false
	}
	if len(spec.Objects) > 0 {
		obj := t.Get(n.Object)
		if obj == nil || obj.Kind != ast.KindIdentifier || !slices.Contains(spec.Objects, obj.Name) {
			return false
		}
	}
	return true
}

// IsMethodCall reports whether n is a call matching spec.Call whose callee
// is a member matching spec.Member.
func IsMethodCall(t *ast.Tree, n *ast.Node, spec MethodCallSpec) bool {
	return IsCall(t, n, spec.Call) && IsMember(t, t.Get(n.Callee), spec.Member)
}

// MethodName returns the property name of a method call's callee.
func MethodName(t *ast.Tree, call *ast.Node) string {
	if call == nil {
		return ""
	}
	callee := t.Get(call.Callee)
	if callee == nil || callee.Kind != ast.KindMember {
		return ""
	}
	if prop := t.Get(callee.Property); prop != nil && prop.Kind == ast.KindIdentifier {
		return prop.Name
	}
	return ""
}

// IsUndefined reports whether n is the identifier undefined.
func IsUndefined(n *ast.Node) bool {
	return ast.IsIdentifierNamed(n, "undefined")
}

// IsSameIdentifier reports whether both nodes are identifiers with one name.
func IsSameIdentifier(a, b *ast.Node) bool {
	return a != nil && b != nil &&
		a.Kind == ast.KindIdentifier && b.Kind == ast.KindIdentifier &&
		a.Name == b.Name
}

// IsLogical reports whether n is an && or || expression. ?? is excluded.
func IsLogical(n *ast.Node) bool {
	return n != nil && n.Kind == ast.KindLogical && (n.Operator == "&&" || n.Operator == "||")
}

// NodeMatchesNameOrPath reports whether n is the identifier or dotted member
// path given, such as "Array.prototype.map" or "this.items".
func NodeMatchesNameOrPath(t *ast.Tree, n *ast.Node, nameOrPath string) bool {
	names := strings.Split(strings.TrimSpace(nameOrPath), ".")
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		if name == "" || n == nil {
			return false
		}
		if i == 0 {
			return ast.IsIdentifierNamed(n, name) || (name == "this" && n.Kind == ast.KindThis)
		}
		if n.Kind != ast.KindMember || n.Optional || n.Computed {
			return false
		}
		if !ast.IsIdentifierNamed(t.Get(n.Property), name) {
			return false
		}
		n = t.Get(n.Object)
	}
	return false
}

// NodeMatches reports whether n matches any of the names or paths.
func NodeMatches(t *ast.Tree, n *ast.Node, namesOrPaths []string) bool {
	for _, p := range namesOrPaths {
		if NodeMatchesNameOrPath(t, n, p) {
			return true
		}
	}
	return false
}

// IsValueNotFunction reports whether n is syntactically known, or very
// likely, not to evaluate to a function.
func IsValueNotFunction(t *ast.Tree, n *ast.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case ast.KindArray, ast.KindBinary, ast.KindClass, ast.KindLiteral,
		ast.KindObject, ast.KindTemplate, ast.KindUnary, ast.KindUpdate:
		return true
	// these could be functions, but almost never are
	case ast.KindAssignment, ast.KindAwait, ast.KindLogical, ast.KindNew,
		ast.KindTaggedTemplate, ast.KindThis:
		return true
	case ast.KindCall:
		return !IsMethodCall(t, n, MethodCall("bind").NotOptional())
	}
	return IsUndefined(n)
}
