package rules

import (
	"maps"

	"github.com/termfx/pegasus/internal/rule"
)

var (
	indexOfOverFindIndex         = newArraySearch("findIndex", "indexOf")
	lastIndexOfOverFindLastIndex = newArraySearch("findLastIndex", "lastIndexOf")
)

// PreferArrayIndexOf replaces findIndex/findLastIndex callbacks that only
// compare against a value with indexOf/lastIndexOf.
var PreferArrayIndexOf = register(&rule.Rule{
	Name: "prefer-array-index-of",
	Meta: rule.Meta{
		Type:                 rule.TypeSuggestion,
		Description:          "Prefer `Array#{indexOf,lastIndexOf}()` over `Array#{findIndex,findLastIndex}()` when looking for the index of an item.",
		RequiresTypeChecking: true,
		Fixable:              true,
		HasSuggestions:       true,
		Messages:             searchMessages(indexOfOverFindIndex, lastIndexOfOverFindLastIndex),
	},
	Create: func(ctx *rule.Context) rule.Listeners {
		indexOfOverFindIndex.listen(ctx)
		lastIndexOfOverFindLastIndex.listen(ctx)
		return nil
	},
})

func searchMessages(searches ...*arraySearch) map[string]string {
	out := map[string]string{}
	for _, s := range searches {
		maps.Copy(out, s.messages())
	}
	return out
}
