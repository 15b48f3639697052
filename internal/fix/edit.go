// Package fix builds and applies source edits. Edit ranges are byte
// offsets into the text the tree was parsed from.
package fix

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/termfx/pegasus/internal/ast"
)

// ErrOverlap is returned when two edits touch the same bytes.
var ErrOverlap = errors.New("overlapping edits")

// Edit replaces Range with Text. An empty range inserts, an empty Text
// removes.
type Edit struct {
	Range ast.Range
	Text  string
}

func (e Edit) String() string {
	return fmt.Sprintf("[%d,%d)%q", e.Range.Start, e.Range.End, e.Text)
}

// Fixer creates edits. It holds no state; the zero value is ready to use.
type Fixer struct{}

// ReplaceText replaces the text of n, not including grouping parens.
func (Fixer) ReplaceText(n *ast.Node, text string) Edit {
	return Edit{Range: n.Range, Text: text}
}

// ReplaceRange replaces r with text.
func (Fixer) ReplaceRange(r ast.Range, text string) Edit {
	return Edit{Range: r, Text: text}
}

// InsertBefore inserts text at the start of r.
func (Fixer) InsertBefore(r ast.Range, text string) Edit {
	return Edit{Range: ast.Range{Start: r.Start, End: r.Start}, Text: text}
}

// InsertAfter inserts text at the end of r.
func (Fixer) InsertAfter(r ast.Range, text string) Edit {
	return Edit{Range: ast.Range{Start: r.End, End: r.End}, Text: text}
}

// Remove deletes r.
func (Fixer) Remove(r ast.Range) Edit {
	return Edit{Range: r}
}

// Span returns the smallest range covering every edit.
func Span(edits []Edit) ast.Range {
	if len(edits) == 0 {
		return ast.Range{}
	}
	span := edits[0].Range
	for _, e := range edits[1:] {
		span.Start = min(span.Start, e.Range.Start)
		span.End = max(span.End, e.Range.End)
	}
	return span
}

// sorted returns a copy of edits ordered by position, or ErrOverlap.
func sorted(edits []Edit) ([]Edit, error) {
	out := make([]Edit, len(edits))
	copy(out, edits)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Range.Start != out[j].Range.Start {
			return out[i].Range.Start < out[j].Range.Start
		}
		return out[i].Range.End < out[j].Range.End
	})
	for i := 1; i < len(out); i++ {
		if out[i].Range.Start < out[i-1].Range.End {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, out[i-1], out[i])
		}
	}
	return out, nil
}

// Apply returns source with all edits applied. Edits may be given in any
// order but must not overlap.
func Apply(source []byte, edits []Edit) ([]byte, error) {
	ordered, err := sorted(edits)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.Grow(len(source))
	pos := 0
	for _, e := range ordered {
		if e.Range.Start < pos || e.Range.End > len(source) || e.Range.Start > e.Range.End {
			return nil, fmt.Errorf("edit %s out of bounds for %d bytes", e, len(source))
		}
		sb.Write(source[pos:e.Range.Start])
		sb.WriteString(e.Text)
		pos = e.Range.End
	}
	sb.Write(source[pos:])
	return []byte(sb.String()), nil
}
