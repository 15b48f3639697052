// Package core discovers source files and writes fixed files back safely.
package core

import "github.com/termfx/pegasus/internal/ast"

// DefaultInclude matches every JavaScript and TypeScript source.
var DefaultInclude = []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts}"}

// DefaultExclude skips dependency, VCS and build directories.
var DefaultExclude = []string{"**/node_modules/**", "**/.git/**", "**/dist/**"}

// FileScope selects the files to lint under Path, a directory or a single
// file. Include defaults to DefaultInclude.
type FileScope struct {
	Path    string
	Include []string
	Exclude []string
}

// WalkResult is a discovered source file
type WalkResult struct {
	Path     string
	Language ast.Language
}
