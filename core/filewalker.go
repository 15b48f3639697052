package core

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/termfx/pegasus/internal/ast"
)

// FileWalker discovers lintable files under a root
type FileWalker struct {
	bufferSize int
}

// NewFileWalker creates a walker
func NewFileWalker() *FileWalker {
	return &FileWalker{bufferSize: 256}
}

// Walk streams the sources under scope.Path matching its patterns. A file
// path is yielded as is when its language is supported, whatever the
// patterns. Directories matching an exclude pattern are not entered and
// unreadable directories are skipped.
func (fw *FileWalker) Walk(ctx context.Context, scope FileScope) (<-chan WalkResult, error) {
	info, err := validateScope(scope)
	if err != nil {
		return nil, err
	}
	include := scope.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	results := make(chan WalkResult, fw.bufferSize)
	emit := func(path string, lang ast.Language) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- WalkResult{Path: path, Language: lang}:
			return nil
		}
	}

	go func() {
		defer close(results)
		if !info.IsDir() {
			if lang, ok := ast.LanguageForPath(scope.Path); ok {
				_ = emit(scope.Path, lang)
			}
			return
		}
		_ = filepath.WalkDir(scope.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == scope.Path {
				return nil
			}
			rel := relative(scope.Path, path)
			if d.IsDir() {
				// trailing slash lets **/dir/** patterns prune the directory
				if matchAny(rel+"/", scope.Exclude) {
					return fs.SkipDir
				}
				return nil
			}
			if matchAny(rel, scope.Exclude) || !matchAny(rel, include) {
				return nil
			}
			lang, ok := ast.LanguageForPath(path)
			if !ok {
				return nil
			}
			return emit(path, lang)
		})
	}()

	return results, nil
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// matchAny matches slash-separated relative paths. Patterns without a slash
// are also tried against the base name.
func matchAny(rel string, patterns []string) bool {
	trimmed := strings.TrimSuffix(rel, "/")
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, trimmed); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, filepath.Base(trimmed)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func validateScope(scope FileScope) (fs.FileInfo, error) {
	if scope.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	info, err := os.Stat(scope.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot access path %s: %w", scope.Path, err)
	}
	for _, pattern := range append(append([]string(nil), scope.Include...), scope.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return info, nil
}

// Collect walks every root and returns the discovered paths sorted and
// deduplicated.
func (fw *FileWalker) Collect(ctx context.Context, roots []string, include, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		results, err := fw.Walk(ctx, FileScope{Path: root, Include: include, Exclude: exclude})
		if err != nil {
			return nil, err
		}
		for result := range results {
			if !seen[result.Path] {
				seen[result.Path] = true
				files = append(files, result.Path)
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
