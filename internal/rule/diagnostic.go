package rule

import (
	"fmt"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/fix"
)

// Position is a 1-based line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

func position(t *ast.Tree, offset int) Position {
	line, col := t.Position(offset)
	return Position{Line: line, Column: col}
}

// SuggestionResult is a suggestion with its edits resolved.
type SuggestionResult struct {
	MessageID string     `json:"messageId"`
	Message   string     `json:"message"`
	Fix       []fix.Edit `json:"-"`
}

// Diagnostic is a reported problem. Fix is nil when the rule offered no
// automatic fix or the fix was aborted.
type Diagnostic struct {
	Rule        string             `json:"rule"`
	MessageID   string             `json:"messageId"`
	Message     string             `json:"message"`
	Data        map[string]string  `json:"data,omitempty"`
	Range       ast.Range          `json:"-"`
	Start       Position           `json:"start"`
	End         Position           `json:"end"`
	Fix         []fix.Edit         `json:"-"`
	Suggestions []SuggestionResult `json:"suggestions,omitempty"`
}

// Fixable reports whether the diagnostic carries an automatic fix.
func (d Diagnostic) Fixable() bool { return len(d.Fix) > 0 }

// String formats the diagnostic as line:col: message (rule).
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Start, d.Message, d.Rule)
}
