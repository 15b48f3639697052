package ast

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Token is a lexical leaf of the concrete tree.
type Token struct {
	Type    string
	Range   Range
	Comment bool
}

// atomic node types are kept as a single token even when the grammar
// gives them children.
var atomic = map[string]bool{
	"string":          true,
	"template_string": true,
	"regex":           true,
	"number":          true,
	"comment":         true,
}

func collectTokens(root *sitter.Node) []Token {
	var out []Token
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		if n.StartByte() == n.EndByte() {
			return
		}
		if n.ChildCount() == 0 || atomic[n.Type()] {
			out = append(out, Token{
				Type:    n.Type(),
				Range:   Range{Start: int(n.StartByte()), End: int(n.EndByte())},
				Comment: n.Type() == "comment",
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return out
}

// TokenFilter selects tokens. A nil filter accepts everything.
type TokenFilter func(Token) bool

// SkipComments is a TokenFilter that rejects comment tokens.
func SkipComments(tok Token) bool { return !tok.Comment }

// TokenBefore returns the nearest token ending at or before offset that
// passes filter.
func (t *Tree) TokenBefore(offset int, filter TokenFilter) (Token, bool) {
	i := sort.Search(len(t.tokens), func(i int) bool { return t.tokens[i].Range.End > offset })
	for i--; i >= 0; i-- {
		if filter == nil || filter(t.tokens[i]) {
			return t.tokens[i], true
		}
	}
	return Token{}, false
}

// TokenAfter returns the nearest token starting at or after offset that
// passes filter.
func (t *Tree) TokenAfter(offset int, filter TokenFilter) (Token, bool) {
	i := sort.Search(len(t.tokens), func(i int) bool { return t.tokens[i].Range.Start >= offset })
	for ; i < len(t.tokens); i++ {
		if filter == nil || filter(t.tokens[i]) {
			return t.tokens[i], true
		}
	}
	return Token{}, false
}

// TokensIn returns the tokens fully inside r.
func (t *Tree) TokensIn(r Range) []Token {
	i := sort.Search(len(t.tokens), func(i int) bool { return t.tokens[i].Range.Start >= r.Start })
	var out []Token
	for ; i < len(t.tokens) && t.tokens[i].Range.End <= r.End; i++ {
		out = append(out, t.tokens[i])
	}
	return out
}

// IsOpeningParen reports whether tok is "(".
func IsOpeningParen(tok Token) bool { return tok.Type == "(" }

// IsClosingParen reports whether tok is ")".
func IsClosingParen(tok Token) bool { return tok.Type == ")" }
