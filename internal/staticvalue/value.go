// Package staticvalue folds compile-time constant JavaScript expressions.
package staticvalue

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Kind is the runtime type of a static value.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	Boolean
	Number
	String
	Array
)

// Value is a statically known JavaScript value.
type Value struct {
	Kind  Kind
	Num   float64
	Str   string
	Bool  bool
	Elems []Value
}

func num(v float64) Value  { return Value{Kind: Number, Num: v} }
func str(s string) Value   { return Value{Kind: String, Str: s} }
func boolean(b bool) Value { return Value{Kind: Boolean, Bool: b} }

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool { return v.Kind == Number }

// Truthy applies JavaScript truthiness.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Boolean:
		return v.Bool
	case Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case String:
		return v.Str != ""
	case Array:
		return true
	}
	return false
}

// ToNumber applies JavaScript numeric coercion.
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case Number:
		return v.Num
	case Boolean:
		if v.Bool {
			return 1
		}
		return 0
	case Null:
		return 0
	case String:
		return stringToNumber(v.Str)
	case Array:
		return stringToNumber(v.ToString())
	}
	return math.NaN()
}

// ToString applies JavaScript string coercion.
func (v Value) ToString() string {
	switch v.Kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case Number:
		return NumberToString(v.Num)
	case String:
		return v.Str
	case Array:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			if e.Kind != Undefined && e.Kind != Null {
				parts[i] = e.ToString()
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// TypeOf returns the typeof string of the value.
func (v Value) TypeOf() string {
	switch v.Kind {
	case Undefined:
		return "undefined"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	}
	return "object"
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	lower := strings.ToLower(s)
	for prefix, base := range map[string]int{"0x": 16, "0o": 8, "0b": 2} {
		if strings.HasPrefix(lower, prefix) {
			v, err := strconv.ParseUint(lower[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(v)
		}
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if strings.ContainsAny(lower, "xn_") || strings.Contains(lower, "inf") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// NumberToString formats a float the way JavaScript's Number#toString does.
func NumberToString(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		// Go pads the exponent to two digits, JavaScript does not
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(math.Mod(f, 4294967296)))))
}

func toUint32(f float64) uint32 {
	return uint32(toInt32(f))
}

func strictEqual(a, b Value) (bool, bool) {
	if a.Kind == Array || b.Kind == Array {
		return false, false
	}
	if a.Kind != b.Kind {
		return false, true
	}
	switch a.Kind {
	case Number:
		return a.Num == b.Num, true
	case String:
		return a.Str == b.Str, true
	case Boolean:
		return a.Bool == b.Bool, true
	}
	return true, true
}

func looseEqual(a, b Value) (bool, bool) {
	if a.Kind == Array || b.Kind == Array {
		return false, false
	}
	nullish := func(v Value) bool { return v.Kind == Null || v.Kind == Undefined }
	if nullish(a) || nullish(b) {
		return nullish(a) && nullish(b), true
	}
	if a.Kind == b.Kind {
		return strictEqual(a, b)
	}
	return a.ToNumber() == b.ToNumber(), true
}

// round is Math.round: halves round toward +Infinity and the sign of zero
// is kept.
func round(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r := math.Floor(f)
	if f-r >= 0.5 {
		r++
	}
	if r == 0 && math.Signbit(f) {
		return math.Copysign(0, -1)
	}
	return r
}

// utf16Len is the String#length of s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// compareUTF16 orders strings by UTF-16 code units, as relational operators
// do.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
