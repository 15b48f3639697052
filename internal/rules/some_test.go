package rules

import (
	"strings"
	"testing"
)

func TestPreferArraySomeFind(t *testing.T) {
	var valid []string
	valid = append(valid,
		"const bar = foo.find(fn)",
		"const bar = foo.find(fn) || baz",
		"if (foo.find(fn) ?? bar) {}",
		"const foo = {find() {}}; if (foo.find(fn)) {}",
		"if (foo.find(fn)) {}",
	)
	for _, code := range []string{
		"new foo.find(fn)",
		"find(fn)",
		`foo["find"](fn)`,
		`foo["fi" + "nd"](fn)`,
		"foo[`find`](fn)",
		"foo[find](fn)",
		"foo.notFind(fn)",
		"foo.find()",
		"foo.find(fn, thisArgument, extraArgument)",
		"foo.find(...argumentsArray)",
		"foo?.find(fn)",
		"foo.find?.(fn)",
	} {
		valid = append(valid,
			"const foo = []; if ("+code+") {}",
			"const foo = []; if ("+strings.Replace(code, "find", "findLast", 1)+") {}",
		)
	}

	var invalids []invalid
	for _, code := range []string{
		"const bar = !foo.find(fn)",
		"const bar = Boolean(foo.find(fn))",
		"if (foo.find(fn)) {}",
		"const bar = foo.find(fn) ? 1 : 2",
		"while (foo.find(fn)) foo.shift();",
		"do {foo.shift();} while (foo.find(fn));",
		"for (; foo.find(fn); ) foo.shift();",
	} {
		code = "const foo = [];" + code
		suggestion := strings.Replace(code, "find", "some", 1)
		invalids = append(invalids,
			invalid{Code: code, Errors: []string{"some"}, Suggestions: []string{suggestion}},
			invalid{
				Code:        strings.Replace(code, "find", "findLast", 1),
				Errors:      []string{"some"},
				Suggestions: []string{suggestion},
			},
		)
	}
	invalids = append(invalids, invalid{
		Code:        "const foo = []; console.log(foo /* comment 1 */ . /* comment 2 */ find /* comment 3 */ (fn) ? a : b)",
		Errors:      []string{"some"},
		Suggestions: []string{"const foo = []; console.log(foo /* comment 1 */ . /* comment 2 */ some /* comment 3 */ (fn) ? a : b)"},
	})
	runRule(t, PreferArraySome, valid, invalids)
}

func TestPreferArraySomeCompare(t *testing.T) {
	const prefix = "const foo = []; "
	var valid []string
	for _, code := range []string{
		"foo.find(fn) == 0",
		`foo.find(fn) != ""`,
		"foo.find(fn) === null",
		`foo.find(fn) !== "null"`,
		"foo.find(fn) >= undefined",
		"foo.find(fn) instanceof undefined",
		"undefined === foo.find(fn)",
		`typeof foo.find(fn) === "undefined"`,
	} {
		valid = append(valid, prefix+code)
	}

	tests := []struct{ code, suggestion string }{
		{"foo.find(fn) == null", "!foo.some(fn)"},
		{"foo.find(fn) == undefined", "!foo.some(fn)"},
		{"foo.find(fn) === undefined", "!foo.some(fn)"},
		{"foo.find(fn) != null", "foo.some(fn)"},
		{"foo.find(fn) != undefined", "foo.some(fn)"},
		{"foo.find(fn) !== undefined", "foo.some(fn)"},
		{"foo.findLast(fn) !== undefined", "foo.some(fn)"},
		{
			`a = (( ((foo.find(fn))) == ((null)) )) ? "no" : "yes";`,
			`a = (( !((foo.some(fn))) )) ? "no" : "yes";`,
		},
	}
	var invalids []invalid
	for _, tt := range tests {
		invalids = append(invalids, invalid{
			Code:        prefix + tt.code,
			Errors:      []string{"some"},
			Suggestions: []string{prefix + tt.suggestion},
		})
	}
	runRule(t, PreferArraySome, valid, invalids)
}

func TestPreferArraySomeFilterLength(t *testing.T) {
	valid := []string{
		"array.filter(fn).length > 0.",
		"array.filter(fn).length > .0",
		"array.filter(fn).length > 0.0",
		"array.filter(fn).length > 0x00",
		"array.filter(fn).length < 0",
		"array.filter(fn).length >= 0",
		"0 > array.filter(fn).length",
		"array.filter(fn).length !== 0.",
		"array.filter(fn).length !== 0x00",
		"array.filter(fn).length != 0",
		"array.filter(fn).length === 0",
		"array.filter(fn).length == 0",
		"array.filter(fn).length = 0",
		"0 !== array.filter(fn).length",
		"array.filter(fn).length >= 1",
		"array.filter(fn).length > 1",
		"array.filter(fn).length += 1",
		"array.filter(fn)?.length > 0",
		"array.filter(fn)[length] > 0",
		"array.filter(fn).notLength > 0",
		"array.filter(fn).length() > 0",
		"+array.filter(fn).length >= 1",
		"array.filter?.(fn).length > 0",
		"array?.filter(fn).length > 0",
		"array.notFilter(fn).length > 0",
		"array.filter.length > 0",
		"array.filter().length > 0",
		`$element.filter(":visible").length > 0`,
	}
	nested := "if (\n" +
		"\t((\n" +
		"\t\t((\n" +
		"\t\t\t((\n" +
		"\t\t\t\t((\n" +
		"\t\t\t\t\tarray\n" +
		"\t\t\t\t))\n" +
		"\t\t\t\t\t.filter(what_ever_here)\n" +
		"\t\t\t))\n" +
		"\t\t\t\t.length\n" +
		"\t\t))\n" +
		"\t\t>\n" +
		"\t\t(( 0 ))\n" +
		"\t))\n" +
		");"
	nestedOutput := "if (\n" +
		"\t((\n" +
		"\t\t((\n" +
		"\t\t\t((\n" +
		"\t\t\t\t((\n" +
		"\t\t\t\t\tarray\n" +
		"\t\t\t\t))\n" +
		"\t\t\t\t\t.some(what_ever_here)\n" +
		"\t\t\t))\n" +
		"\t\t))\n" +
		"\t))\n" +
		");"
	invalids := []invalid{
		{Code: "array.filter(fn).length > 0", Output: "array.some(fn)", Errors: []string{"filter"}},
		{Code: "array.filter(fn).length !== 0", Output: "array.some(fn)", Errors: []string{"filter"}},
		{Code: "if (array.filter(x => x > 1).length > 0) {}", Output: "if (array.some(x => x > 1)) {}", Errors: []string{"filter"}},
		{Code: nested, Output: nestedOutput, Errors: []string{"filter"}},
	}
	runRule(t, PreferArraySome, valid, invalids)
}
