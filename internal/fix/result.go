package fix

import (
	"errors"
	"fmt"

	"github.com/termfx/pegasus/internal/ast"
)

// ErrAbort is returned by a Build callback to discard every edit queued so
// far. It is not an error for the caller of Build.
var ErrAbort = errors.New("fix aborted")

// Result is the outcome of synthesizing one fix: either a complete set of
// edits or an abort.
type Result struct {
	edits   []Edit
	aborted bool
}

// Completed returns a successful result.
func Completed(edits ...Edit) Result { return Result{edits: edits} }

// Aborted returns a result without edits.
func Aborted() Result { return Result{aborted: true} }

// Edits returns the edits of a completed result, nil when aborted.
func (r Result) Edits() []Edit {
	if r.aborted {
		return nil
	}
	return r.edits
}

// IsAborted reports whether the fix was abandoned.
func (r Result) IsAborted() bool { return r.aborted }

// Builder queues the edits of one fix.
type Builder struct {
	Fixer
	tree  *ast.Tree
	edits []Edit
}

// Tree returns the tree the fix is built against.
func (b *Builder) Tree() *ast.Tree { return b.tree }

// Add queues edits.
func (b *Builder) Add(edits ...Edit) {
	b.edits = append(b.edits, edits...)
}

// Build runs fn and collects what it queued. fn returning ErrAbort (possibly
// wrapped) yields an Aborted result. Any other error is returned as is.
// Overlapping edits are a bug in fn and reported as ErrOverlap.
func Build(t *ast.Tree, fn func(*Builder) error) (Result, error) {
	b := &Builder{tree: t}
	if err := fn(b); err != nil {
		if errors.Is(err, ErrAbort) {
			return Aborted(), nil
		}
		return Result{}, err
	}
	edits, err := sorted(b.edits)
	if err != nil {
		return Result{}, fmt.Errorf("build fix: %w", err)
	}
	return Completed(edits...), nil
}
