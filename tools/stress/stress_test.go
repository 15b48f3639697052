//go:build stress

package stress

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/termfx/pegasus/core"
	"github.com/termfx/pegasus/internal/linter"
	"github.com/termfx/pegasus/internal/rules"
)

const source = `const a = [[1], [2]].map(x => [x]).flat();
const b = foo.substr(1, 2);
const c = items.findIndex(x => x === needle);
if (items.filter(fn).length > 0) {}
`

func TestStressFixFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := 0; i < 200; i++ {
		path := filepath.Join(dir, fmt.Sprintf("pkg%d", i%10), fmt.Sprintf("file%d.ts", i))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	ctx := context.Background()
	paths, err := core.NewFileWalker().Collect(ctx, []string{dir}, core.DefaultInclude, core.DefaultExclude)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(paths) != 200 {
		t.Fatalf("expected 200 files, got %d", len(paths))
	}

	l, err := linter.New(linter.Options{Rules: rules.All(), Workers: 16})
	if err != nil {
		t.Fatalf("linter: %v", err)
	}

	var want string
	for i := 0; i < 20; i++ {
		results, err := l.LintFiles(ctx, paths, true)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		for _, res := range results {
			if res.Err != nil {
				t.Fatalf("iteration %d %s: %v", i, res.Path, res.Err)
			}
			if res.Fixed == 0 {
				t.Fatalf("iteration %d %s: expected fixes", i, res.Path)
			}
			if want == "" {
				want = string(res.Output)
			}
			if string(res.Output) != want {
				t.Fatalf("iteration %d %s: output differs:\n%s", i, res.Path, res.Output)
			}
		}
	}
}
