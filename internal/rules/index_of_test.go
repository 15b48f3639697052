package rules

import (
	"strings"
	"testing"
)

func searchFixtures(method, replacement string) ([]string, []invalid) {
	errorID := "prefer-" + replacement + "-over-" + method + "/error"
	r := strings.NewReplacer("findIndex", method, "indexOf", replacement)

	valid := []string{
		"foo.findIndex(x => x === x.length)",
		"foo.findIndex(async x => x === bar)",
		"foo.findIndex(function * (x) { return x === bar; })",
		"foo.findIndex((x, y) => x === bar)",
		"foo.findIndex(({x}) => x === bar)",
		"foo.findIndex(([x]) => x === bar)",
		"foo.findIndex(x => x == bar)",
		"foo.findIndex(x => x !== bar)",
		"foo.findIndex(x => y === bar)",
		"foo.findIndex(x => { bar(); return x === bar; })",
		"foo.findIndex(x => { return; })",
		"foo.findIndex(function (x) { return x === this.bar; })",
		"foo.findIndex(function (x) { return x === arguments.length; })",
		"foo.findIndex(function fn(x) { return x === fn; })",
		"foo.findIndex(x => x === bar, thisArgument)",
		"foo.findIndex(fn)",
		"foo.findIndex()",
		"foo?.findIndex(x => x === bar)",
		"foo.findIndex?.(x => x === bar)",
		"new foo.findIndex(x => x === bar)",
		"foo[findIndex](x => x === bar)",
		"findIndex(x => x === bar)",
		"foo.notFindIndex(x => x === bar)",
	}
	invalid := []invalid{
		{
			Code:   `values.findIndex(x => x === "foo")`,
			Output: `values.indexOf("foo")`,
			Errors: []string{errorID},
		},
		{
			Code:   `values.findIndex(x => "foo" === x)`,
			Output: `values.indexOf("foo")`,
			Errors: []string{errorID},
		},
		{
			Code:   `values.findIndex(x => { return x === "foo"; })`,
			Output: `values.indexOf("foo")`,
			Errors: []string{errorID},
		},
		{
			Code:   `values.findIndex(function (x) { return x === "foo"; })`,
			Output: `values.indexOf("foo")`,
			Errors: []string{errorID},
		},
		{
			Code:   "values.findIndex(x => x === bar)",
			Output: "values.indexOf(bar)",
			Errors: []string{errorID},
		},
		{
			Code:   "values.findIndex(x => x === (0, bar))",
			Output: "values.indexOf((0, bar))",
			Errors: []string{errorID},
		},
		{
			Code:        "values.findIndex(x => x === foo())",
			Errors:      []string{errorID},
			Suggestions: []string{"values.indexOf(foo())"},
		},
	}
	for i, code := range valid {
		valid[i] = r.Replace(code)
	}
	for i := range invalid {
		invalid[i].Code = r.Replace(invalid[i].Code)
		if invalid[i].Output != "" {
			invalid[i].Output = r.Replace(invalid[i].Output)
		}
		for j, s := range invalid[i].Suggestions {
			invalid[i].Suggestions[j] = r.Replace(s)
		}
	}
	return valid, invalid
}

func TestPreferArrayIndexOf(t *testing.T) {
	t.Run("findIndex", func(t *testing.T) {
		valid, invalid := searchFixtures("findIndex", "indexOf")
		runRule(t, PreferArrayIndexOf, valid, invalid)
	})
	t.Run("findLastIndex", func(t *testing.T) {
		valid, invalid := searchFixtures("findLastIndex", "lastIndexOf")
		runRule(t, PreferArrayIndexOf, valid, invalid)
	})
}

func TestPreferArrayIndexOfMessages(t *testing.T) {
	msgs := PreferArrayIndexOf.Meta.Messages
	for _, id := range []string{
		"prefer-indexOf-over-findIndex/error",
		"prefer-indexOf-over-findIndex/suggestion",
		"prefer-lastIndexOf-over-findLastIndex/error",
		"prefer-lastIndexOf-over-findLastIndex/suggestion",
	} {
		if _, ok := msgs[id]; !ok {
			t.Errorf("missing message %q", id)
		}
	}
}
