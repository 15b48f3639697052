package ast

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language selects the tree-sitter grammar used to parse a file.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
)

// ErrUnsupportedLanguage is returned for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Extensions lists the file extensions handled for each language.
var Extensions = map[Language][]string{
	JavaScript: {".js", ".jsx", ".mjs", ".cjs"},
	TypeScript: {".ts", ".mts", ".cts"},
	TSX:        {".tsx"},
}

// LanguageForPath infers the language from a file extension.
func LanguageForPath(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for lang, exts := range Extensions {
		for _, e := range exts {
			if e == ext {
				return lang, true
			}
		}
	}
	return "", false
}

func (l Language) grammar() (*sitter.Language, error) {
	switch l {
	case JavaScript, "":
		return javascript.GetLanguage(), nil
	case TypeScript:
		return typescript.GetLanguage(), nil
	case TSX:
		return tsx.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
}

// SyntaxError is a tree-sitter ERROR or MISSING node.
type SyntaxError struct {
	Line    int
	Column  int
	Missing bool
}

func (e SyntaxError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing token at line %d, column %d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
}

// Parse parses source and converts the concrete tree into an arena Tree.
// Syntax errors do not fail the parse; they are collected in Tree.Errors.
func Parse(ctx context.Context, source []byte, lang Language) (*Tree, error) {
	grammar, err := lang.grammar()
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = JavaScript
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	cst, err := parser.ParseCtx(ctx, nil, source)
	if err != nil || cst == nil {
		return nil, fmt.Errorf("failed to parse source: %v", err)
	}
	defer cst.Close()

	t := &Tree{
		Source:   source,
		Language: lang,
		nodes:    make([]Node, 1, 64),
		parents:  make([]NodeID, 1, 64),
		parens:   make([][]Range, 1, 64),
	}
	t.lines = lineStarts(source)

	root := cst.RootNode()
	b := &builder{src: source, t: t}
	t.root = b.program(root)
	t.link()
	t.tokens = collectTokens(root)
	collectErrors(t, root)

	return t, nil
}

// ParseString is a convenience wrapper for tests and small inputs.
func ParseString(source string, lang Language) (*Tree, error) {
	return Parse(context.Background(), []byte(source), lang)
}

func lineStarts(src []byte) []int {
	lines := []int{0}
	for i, c := range src {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

func collectErrors(t *Tree, node *sitter.Node) {
	if node.Type() == "ERROR" || node.IsMissing() {
		line, col := t.Position(int(node.StartByte()))
		t.Errors = append(t.Errors, SyntaxError{Line: line, Column: col, Missing: node.IsMissing()})
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectErrors(t, node.Child(i))
	}
}

// link fills the parent table and the per-node child lists.
func (t *Tree) link() {
	t.children = make([][]NodeID, len(t.nodes))
	for i := 1; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		kids := childIDs(n)
		if len(kids) == 0 {
			continue
		}
		seen := make(map[NodeID]bool, len(kids))
		list := make([]NodeID, 0, len(kids))
		for _, k := range kids {
			if k == NoNode || seen[k] {
				continue
			}
			seen[k] = true
			t.parents[k] = n.ID
			list = append(list, k)
		}
		sortByStart(t, list)
		t.children[i] = list
	}
}

func childIDs(n *Node) []NodeID {
	ids := []NodeID{
		n.Expression, n.Callee, n.Object, n.Property, n.Argument, n.Left, n.Right,
		n.Test, n.Consequent, n.Alternate, n.Init, n.Update, n.Body, n.Ident,
		n.Super, n.Key, n.Value, n.Quasi,
	}
	ids = append(ids, n.Arguments...)
	ids = append(ids, n.Params...)
	ids = append(ids, n.List...)
	return ids
}

func sortByStart(t *Tree, ids []NodeID) {
	// insertion sort: child lists are short and nearly ordered
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && t.nodes[ids[j]].Range.Start < t.nodes[ids[j-1]].Range.Start; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
