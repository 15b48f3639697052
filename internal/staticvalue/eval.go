package staticvalue

import (
	"math"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/scope"
)

// maxDepth bounds constant resolution through chains of bindings.
const maxDepth = 32

var mathConstants = map[string]float64{
	"E":       math.E,
	"LN2":     math.Ln2,
	"LN10":    math.Ln10,
	"LOG2E":   math.Log2E,
	"LOG10E":  math.Log10E,
	"PI":      math.Pi,
	"SQRT1_2": math.Sqrt2 / 2,
	"SQRT2":   math.Sqrt2,
}

var numberConstants = map[string]float64{
	"EPSILON":           math.Nextafter(1, 2) - 1,
	"MAX_SAFE_INTEGER":  9007199254740991,
	"MAX_VALUE":         math.MaxFloat64,
	"MIN_SAFE_INTEGER":  -9007199254740991,
	"MIN_VALUE":         5e-324,
	"NaN":               math.NaN(),
	"NEGATIVE_INFINITY": math.Inf(-1),
	"POSITIVE_INFINITY": math.Inf(1),
}

var mathUnary = map[string]func(float64) float64{
	"abs":   math.Abs,
	"acos":  math.Acos,
	"acosh": math.Acosh,
	"asin":  math.Asin,
	"asinh": math.Asinh,
	"atan":  math.Atan,
	"atanh": math.Atanh,
	"cbrt":  math.Cbrt,
	"ceil":  math.Ceil,
	"cos":   math.Cos,
	"cosh":  math.Cosh,
	"exp":   math.Exp,
	"expm1": math.Expm1,
	"floor": math.Floor,
	"fround": func(f float64) float64 {
		return float64(float32(f))
	},
	"log":   math.Log,
	"log1p": math.Log1p,
	"log10": math.Log10,
	"log2":  math.Log2,
	"round": round,
	"sign": func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	},
	"sin":   math.Sin,
	"sinh":  math.Sinh,
	"sqrt":  math.Sqrt,
	"tan":   math.Tan,
	"tanh":  math.Tanh,
	"trunc": math.Trunc,
}

type evaluator struct {
	t      *ast.Tree
	scopes *scope.Manager
	depth  int
}

// Evaluate returns the static value of n, if it can be computed without
// running the program. scopes may be nil, in which case identifiers other
// than the undefined, NaN and Infinity globals are never resolved.
func Evaluate(t *ast.Tree, scopes *scope.Manager, n *ast.Node) (Value, bool) {
	e := &evaluator{t: t, scopes: scopes}
	return e.eval(n)
}

func (e *evaluator) eval(n *ast.Node) (Value, bool) {
	if n == nil {
		return Value{}, false
	}
	t := e.t
	switch n.Kind {
	case ast.KindLiteral:
		if n.Lit.Inexact {
			return Value{}, false
		}
		switch n.Lit.Kind {
		case ast.LitNumber:
			return num(n.Lit.Num), true
		case ast.LitString:
			return str(n.Lit.Str), true
		case ast.LitBoolean:
			return boolean(n.Lit.Bool), true
		case ast.LitNull:
			return Value{Kind: Null}, true
		}
		return Value{}, false

	case ast.KindTemplate:
		if len(n.List) == 0 && n.Lit.Kind == ast.LitString && !n.Lit.Inexact {
			return str(n.Lit.Str), true
		}
		return Value{}, false

	case ast.KindIdentifier:
		return e.identifier(n)

	case ast.KindUnknown:
		// type assertions and non-null wrappers evaluate to their operand
		if n.Expression != ast.NoNode {
			return e.eval(t.Get(n.Expression))
		}
		return Value{}, false

	case ast.KindArray:
		out := Value{Kind: Array}
		for _, id := range n.List {
			el := t.Get(id)
			if el.Kind == ast.KindSpread {
				inner, ok := e.eval(t.Get(el.Argument))
				if !ok {
					return Value{}, false
				}
				switch inner.Kind {
				case Array:
					out.Elems = append(out.Elems, inner.Elems...)
				case String:
					for _, r := range inner.Str {
						out.Elems = append(out.Elems, str(string(r)))
					}
				default:
					return Value{}, false
				}
				continue
			}
			v, ok := e.eval(el)
			if !ok {
				return Value{}, false
			}
			out.Elems = append(out.Elems, v)
		}
		return out, true

	case ast.KindUnary:
		return e.unary(n)

	case ast.KindBinary:
		left, ok := e.eval(t.Get(n.Left))
		if !ok {
			return Value{}, false
		}
		right, ok := e.eval(t.Get(n.Right))
		if !ok {
			return Value{}, false
		}
		return binary(n.Operator, left, right)

	case ast.KindLogical:
		left, ok := e.eval(t.Get(n.Left))
		if !ok {
			return Value{}, false
		}
		switch n.Operator {
		case "&&":
			if !left.Truthy() {
				return left, true
			}
		case "||":
			if left.Truthy() {
				return left, true
			}
		case "??":
			if left.Kind != Null && left.Kind != Undefined {
				return left, true
			}
		}
		return e.eval(t.Get(n.Right))

	case ast.KindConditional:
		test, ok := e.eval(t.Get(n.Test))
		if !ok {
			return Value{}, false
		}
		if test.Truthy() {
			return e.eval(t.Get(n.Consequent))
		}
		return e.eval(t.Get(n.Alternate))

	case ast.KindSequence:
		if len(n.List) == 0 {
			return Value{}, false
		}
		return e.eval(t.Get(n.List[len(n.List)-1]))

	case ast.KindMember:
		return e.member(n)

	case ast.KindCall:
		return e.call(n)
	}
	return Value{}, false
}

func (e *evaluator) identifier(n *ast.Node) (Value, bool) {
	var v *scope.Variable
	if e.scopes != nil {
		if ref := e.scopes.Reference(n); ref != nil {
			v = ref.Resolved
		}
	}
	if v == nil {
		switch n.Name {
		case "undefined":
			return Value{Kind: Undefined}, true
		case "NaN":
			return num(math.NaN()), true
		case "Infinity":
			return num(math.Inf(1)), true
		}
		return Value{}, false
	}
	if len(v.Defs) != 1 || v.Defs[0].Kind != scope.DefConst {
		return Value{}, false
	}
	decl := v.Defs[0].Node
	if decl == nil || decl.Kind != ast.KindVariableDeclarator || decl.Ident != v.Defs[0].Name.ID {
		return Value{}, false
	}
	if e.depth >= maxDepth {
		return Value{}, false
	}
	e.depth++
	defer func() { e.depth-- }()
	return e.eval(e.t.Get(decl.Init))
}

func (e *evaluator) unary(n *ast.Node) (Value, bool) {
	arg, ok := e.eval(e.t.Get(n.Argument))
	if !ok {
		return Value{}, false
	}
	switch n.Operator {
	case "-":
		return num(-arg.ToNumber()), true
	case "+":
		return num(arg.ToNumber()), true
	case "!":
		return boolean(!arg.Truthy()), true
	case "~":
		return num(float64(^toInt32(arg.ToNumber()))), true
	case "typeof":
		return str(arg.TypeOf()), true
	case "void":
		return Value{Kind: Undefined}, true
	}
	return Value{}, false
}

func binary(op string, l, r Value) (Value, bool) {
	switch op {
	case "==", "!=":
		eq, ok := looseEqual(l, r)
		return boolean(eq == (op == "==")), ok
	case "===", "!==":
		eq, ok := strictEqual(l, r)
		return boolean(eq == (op == "===")), ok
	case "<", ">", "<=", ">=":
		if l.Kind == Array || r.Kind == Array {
			return Value{}, false
		}
		if l.Kind == String && r.Kind == String {
			c := compareUTF16(l.Str, r.Str)
			switch op {
			case "<":
				return boolean(c < 0), true
			case ">":
				return boolean(c > 0), true
			case "<=":
				return boolean(c <= 0), true
			}
			return boolean(c >= 0), true
		}
		a, b := l.ToNumber(), r.ToNumber()
		switch op {
		case "<":
			return boolean(a < b), true
		case ">":
			return boolean(a > b), true
		case "<=":
			return boolean(a <= b), true
		}
		return boolean(a >= b), true
	case "+":
		if l.Kind == String || r.Kind == String || l.Kind == Array || r.Kind == Array {
			return str(l.ToString() + r.ToString()), true
		}
		return num(l.ToNumber() + r.ToNumber()), true
	}

	a, b := l.ToNumber(), r.ToNumber()
	switch op {
	case "-":
		return num(a - b), true
	case "*":
		return num(a * b), true
	case "/":
		return num(a / b), true
	case "%":
		return num(math.Mod(a, b)), true
	case "**":
		return num(math.Pow(a, b)), true
	case "<<":
		return num(float64(toInt32(a) << (toUint32(b) & 31))), true
	case ">>":
		return num(float64(toInt32(a) >> (toUint32(b) & 31))), true
	case ">>>":
		return num(float64(toUint32(a) >> (toUint32(b) & 31))), true
	case "|":
		return num(float64(toInt32(a) | toInt32(b))), true
	case "&":
		return num(float64(toInt32(a) & toInt32(b))), true
	case "^":
		return num(float64(toInt32(a) ^ toInt32(b))), true
	}
	return Value{}, false
}

// global reports whether n names an unshadowed global.
func (e *evaluator) global(n *ast.Node, name string) bool {
	if !ast.IsIdentifierNamed(n, name) {
		return false
	}
	if e.scopes == nil {
		return true
	}
	ref := e.scopes.Reference(n)
	return ref == nil || ref.Resolved == nil
}

func (e *evaluator) member(n *ast.Node) (Value, bool) {
	t := e.t
	obj := t.Get(n.Object)
	prop := t.Get(n.Property)
	if prop == nil {
		return Value{}, false
	}

	var name string
	switch {
	case !n.Computed && prop.Kind == ast.KindIdentifier:
		name = prop.Name
	case n.Computed:
		v, ok := e.eval(prop)
		if !ok {
			return Value{}, false
		}
		name = v.ToString()
	default:
		return Value{}, false
	}

	if e.global(obj, "Math") {
		v, ok := mathConstants[name]
		return num(v), ok
	}
	if e.global(obj, "Number") {
		v, ok := numberConstants[name]
		return num(v), ok
	}

	target, ok := e.eval(obj)
	if !ok {
		return Value{}, false
	}
	if target.Kind == Null || target.Kind == Undefined {
		if n.Optional {
			return Value{Kind: Undefined}, true
		}
		return Value{}, false
	}
	switch target.Kind {
	case String:
		if name == "length" {
			return num(float64(utf16Len(target.Str))), true
		}
	case Array:
		if name == "length" {
			return num(float64(len(target.Elems))), true
		}
	}
	return Value{}, false
}

func (e *evaluator) args(n *ast.Node) ([]Value, bool) {
	out := make([]Value, 0, len(n.Arguments))
	for _, id := range n.Arguments {
		a := e.t.Get(id)
		if a.Kind == ast.KindSpread {
			return nil, false
		}
		v, ok := e.eval(a)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func (e *evaluator) call(n *ast.Node) (Value, bool) {
	t := e.t
	callee := t.Get(n.Callee)
	if callee == nil || n.Optional {
		return Value{}, false
	}

	switch {
	case e.global(callee, "Number"):
		args, ok := e.args(n)
		if !ok {
			return Value{}, false
		}
		if len(args) == 0 {
			return num(0), true
		}
		return num(args[0].ToNumber()), true
	case e.global(callee, "String"):
		args, ok := e.args(n)
		if !ok {
			return Value{}, false
		}
		if len(args) == 0 {
			return str(""), true
		}
		return str(args[0].ToString()), true
	case e.global(callee, "Boolean"):
		args, ok := e.args(n)
		if !ok {
			return Value{}, false
		}
		return boolean(len(args) > 0 && args[0].Truthy()), true
	}

	if callee.Kind != ast.KindMember || callee.Computed || callee.Optional {
		return Value{}, false
	}
	prop := t.Get(callee.Property)
	if prop == nil || prop.Kind != ast.KindIdentifier {
		return Value{}, false
	}
	obj := t.Get(callee.Object)

	switch {
	case e.global(obj, "Math"):
		args, ok := e.args(n)
		if !ok {
			return Value{}, false
		}
		return mathCall(prop.Name, args)
	case e.global(obj, "Number"):
		args, ok := e.args(n)
		if !ok || len(args) == 0 {
			return Value{}, false
		}
		switch prop.Name {
		case "isNaN":
			return boolean(args[0].Kind == Number && math.IsNaN(args[0].Num)), true
		case "isFinite":
			return boolean(args[0].Kind == Number && !math.IsNaN(args[0].Num) && !math.IsInf(args[0].Num, 0)), true
		case "isInteger":
			return boolean(args[0].Kind == Number && !math.IsInf(args[0].Num, 0) && args[0].Num == math.Trunc(args[0].Num)), true
		}
	}
	return Value{}, false
}

func mathCall(name string, args []Value) (Value, bool) {
	if fn, ok := mathUnary[name]; ok {
		x := math.NaN()
		if len(args) > 0 {
			x = args[0].ToNumber()
		}
		return num(fn(x)), true
	}
	switch name {
	case "max", "min":
		res := math.Inf(1)
		if name == "max" {
			res = math.Inf(-1)
		}
		for _, a := range args {
			x := a.ToNumber()
			if math.IsNaN(x) {
				return num(math.NaN()), true
			}
			if (name == "max" && x > res) || (name == "min" && x < res) {
				res = x
			}
		}
		return num(res), true
	case "pow":
		if len(args) < 2 {
			return num(math.NaN()), true
		}
		return num(math.Pow(args[0].ToNumber(), args[1].ToNumber())), true
	case "atan2":
		if len(args) < 2 {
			return num(math.NaN()), true
		}
		return num(math.Atan2(args[0].ToNumber(), args[1].ToNumber())), true
	case "hypot":
		sum := 0.0
		for _, a := range args {
			x := a.ToNumber()
			sum += x * x
		}
		return num(math.Sqrt(sum)), true
	}
	return Value{}, false
}
