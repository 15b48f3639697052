// Package match recognizes structural shapes in an ast.Tree: calls, member
// accesses, method calls and literal values.
//
// Every predicate is total and side-effect free. Absent or foreign nodes
// simply do not match.
package match

// Flag is a tri-state boolean option. Any matches both true and false.
type Flag uint8

const (
	Any Flag = iota
	True
	False
)

func (f Flag) accepts(v bool) bool {
	switch f {
	case True:
		return v
	case False:
		return !v
	}
	return true
}

// Unbounded marks an argument count without a limit.
const Unbounded = -1

// CallSpec describes a call or new expression. Create it with Call so the
// argument bounds default to unbounded.
type CallSpec struct {
	Names           []string // callee identifier names, empty matches any callee
	ArgumentsLength int      // exact count, Unbounded when unset
	MinArguments    int
	MaxArguments    int // Unbounded when unset
	AllowSpread     bool
	Optional        Flag // ignored for new expressions
}

// Call returns a CallSpec matching calls to any of names.
func Call(names ...string) CallSpec {
	return CallSpec{
		Names:           names,
		ArgumentsLength: Unbounded,
		MaxArguments:    Unbounded,
	}
}

// Args requires exactly n arguments.
func (s CallSpec) Args(n int) CallSpec { s.ArgumentsLength = n; return s }

// MinArgs requires at least n arguments.
func (s CallSpec) MinArgs(n int) CallSpec { s.MinArguments = n; return s }

// MaxArgs allows at most n arguments.
func (s CallSpec) MaxArgs(n int) CallSpec { s.MaxArguments = n; return s }

// Spread allows spread elements within the counted positions.
func (s CallSpec) Spread() CallSpec { s.AllowSpread = true; return s }

// WithOptional constrains the optional-call flag.
func (s CallSpec) WithOptional(f Flag) CallSpec { s.Optional = f; return s }

// MemberSpec describes a member expression. Create it with Member so a
// property list implies non-computed access.
type MemberSpec struct {
	Properties []string // property names, empty matches any property
	Objects    []string // object identifier names, empty matches any object
	Optional   Flag
	Computed   Flag
}

// Member returns a MemberSpec matching accesses of any of properties.
func Member(properties ...string) MemberSpec {
	s := MemberSpec{Properties: properties}
	if len(properties) > 0 {
		s.Computed = False
	}
	return s
}

// On requires the object to be an identifier named one of objects.
func (s MemberSpec) On(objects ...string) MemberSpec { s.Objects = objects; return s }

// WithOptional constrains the optional-member flag.
func (s MemberSpec) WithOptional(f Flag) MemberSpec { s.Optional = f; return s }

// WithComputed constrains the computed flag.
func (s MemberSpec) WithComputed(f Flag) MemberSpec { s.Computed = f; return s }

// MethodCallSpec is a call whose callee is a member expression.
type MethodCallSpec struct {
	Call   CallSpec
	Member MemberSpec
}

// MethodCall returns a spec matching calls of any of methods on any object.
func MethodCall(methods ...string) MethodCallSpec {
	return MethodCallSpec{Call: Call(), Member: Member(methods...)}
}

// Args requires exactly n arguments.
func (s MethodCallSpec) Args(n int) MethodCallSpec { s.Call = s.Call.Args(n); return s }

// MinArgs requires at least n arguments.
func (s MethodCallSpec) MinArgs(n int) MethodCallSpec { s.Call = s.Call.MinArgs(n); return s }

// MaxArgs allows at most n arguments.
func (s MethodCallSpec) MaxArgs(n int) MethodCallSpec { s.Call = s.Call.MaxArgs(n); return s }

// Spread allows spread arguments.
func (s MethodCallSpec) Spread() MethodCallSpec { s.Call = s.Call.Spread(); return s }

// On requires the receiver to be an identifier named one of objects.
func (s MethodCallSpec) On(objects ...string) MethodCallSpec {
	s.Member = s.Member.On(objects...)
	return s
}

// OptionalCall constrains the optional-call flag.
func (s MethodCallSpec) OptionalCall(f Flag) MethodCallSpec {
	s.Call = s.Call.WithOptional(f)
	return s
}

// OptionalMember constrains the optional-member flag.
func (s MethodCallSpec) OptionalMember(f Flag) MethodCallSpec {
	s.Member = s.Member.WithOptional(f)
	return s
}

// NotOptional rejects both optional calls and optional member access.
func (s MethodCallSpec) NotOptional() MethodCallSpec {
	return s.OptionalCall(False).OptionalMember(False)
}

// Computed constrains the computed flag of the callee.
func (s MethodCallSpec) Computed(f Flag) MethodCallSpec {
	s.Member = s.Member.WithComputed(f)
	return s
}
