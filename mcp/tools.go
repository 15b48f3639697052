package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/termfx/pegasus/core"
	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/linter"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/rules"
)

// ToolDefinition describes a tool for the client
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var sourceProperties = map[string]any{
	"source": map[string]any{
		"type":        "string",
		"description": "Source code to analyze",
	},
	"language": map[string]any{
		"type":        "string",
		"enum":        []string{string(ast.JavaScript), string(ast.TypeScript), string(ast.TSX)},
		"description": "Source language; inferred from path when omitted",
	},
	"path": map[string]any{
		"type":        "string",
		"description": "File name used in reports and for language detection",
	},
	"rules": map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "Rules to run (default: all enabled rules)",
	},
}

// GetToolDefinitions returns all available tool definitions
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "lint",
			Description: "Report array and string idiom problems in a JavaScript or TypeScript source",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": sourceProperties,
				"required":   []string{"source"},
			},
		},
		{
			Name:        "fix",
			Description: "Apply every automatic fix to a source and return the fixed text with a diff",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": sourceProperties,
				"required":   []string{"source"},
			},
		},
		{
			Name:        "lint_files",
			Description: "Lint files and directories on disk without modifying them",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paths": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Files or directories to lint",
					},
					"rules": sourceProperties["rules"],
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "list_rules",
			Description: "List the available rules with their messages",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
	}
}

func (s *StdioServer) registerBuiltinTools() {
	s.RegisterTool("lint", s.lintTool)
	s.RegisterTool("fix", s.fixTool)
	s.RegisterTool("lint_files", s.lintFilesTool)
	s.RegisterTool("list_rules", s.listRulesTool)
}

type sourceArgs struct {
	Source   string   `json:"source"`
	Language string   `json:"language"`
	Path     string   `json:"path"`
	Rules    []string `json:"rules"`
}

func decodeArgs(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return NewMCPError(InvalidParams, "missing arguments")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return WrapError(InvalidParams, "invalid arguments", err)
	}
	return nil
}

func (a *sourceArgs) language() (ast.Language, error) {
	if a.Language != "" {
		lang := ast.Language(strings.ToLower(a.Language))
		if _, ok := ast.Extensions[lang]; !ok {
			return "", NewMCPError(UnsupportedLanguage, fmt.Sprintf("unsupported language %q", a.Language))
		}
		return lang, nil
	}
	if a.Path != "" {
		if lang, ok := ast.LanguageForPath(a.Path); ok {
			return lang, nil
		}
		return "", NewMCPError(UnsupportedLanguage, fmt.Sprintf("cannot infer language of %q", a.Path))
	}
	return "", NewMCPError(InvalidParams, "language or path is required")
}

func (s *StdioServer) linterFor(names []string) (*linter.Linter, error) {
	selected := s.config.Rules
	if len(names) > 0 {
		selected = nil
		for _, name := range names {
			r, ok := rules.Lookup(name)
			if !ok {
				return nil, NewMCPError(UnknownRule, fmt.Sprintf("unknown rule %q", name))
			}
			selected = append(selected, r)
		}
	}
	return linter.New(linter.Options{
		Rules:     selected,
		MaxPasses: s.config.MaxPasses,
		Workers:   s.config.Workers,
		Debugf:    s.debugLog,
	})
}

func (s *StdioServer) prepareSource(params json.RawMessage) (*linter.Linter, *sourceArgs, ast.Language, error) {
	var args sourceArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, nil, "", err
	}
	lang, err := args.language()
	if err != nil {
		return nil, nil, "", err
	}
	if args.Path == "" {
		args.Path = "source" + ast.Extensions[lang][0]
	}
	l, err := s.linterFor(args.Rules)
	if err != nil {
		return nil, nil, "", err
	}
	return l, &args, lang, nil
}

func (s *StdioServer) lintTool(ctx context.Context, params json.RawMessage) (any, error) {
	l, args, lang, err := s.prepareSource(params)
	if err != nil {
		return nil, err
	}
	res, err := l.LintSource(ctx, args.Path, []byte(args.Source), lang)
	if err != nil {
		return nil, WrapError(LintFailed, "lint failed", err)
	}
	return toolResult(describe(res.Diagnostics), map[string]any{
		"diagnostics":  nonNil(res.Diagnostics),
		"syntaxErrors": syntaxErrors(res.SyntaxErrors),
	}), nil
}

func (s *StdioServer) fixTool(ctx context.Context, params json.RawMessage) (any, error) {
	l, args, lang, err := s.prepareSource(params)
	if err != nil {
		return nil, err
	}
	res, err := l.Fix(ctx, args.Path, []byte(args.Source), lang)
	if err != nil {
		return nil, WrapError(LintFailed, "fix failed", err)
	}
	diff, err := res.Diff()
	if err != nil {
		return nil, WrapError(InternalError, "diff failed", err)
	}

	text := fmt.Sprintf("Applied %d fixes in %d passes\n%s", res.Fixed, res.Passes, describe(res.Diagnostics))
	if diff != "" {
		text += "\n```diff\n" + diff + "```"
	}
	return toolResult(text, map[string]any{
		"output":       string(res.Output),
		"diff":         diff,
		"fixed":        res.Fixed,
		"passes":       res.Passes,
		"diagnostics":  nonNil(res.Diagnostics),
		"syntaxErrors": syntaxErrors(res.SyntaxErrors),
	}), nil
}

type fileResult struct {
	Path        string            `json:"path"`
	Diagnostics []rule.Diagnostic `json:"diagnostics"`
	Error       string            `json:"error,omitempty"`
}

func (s *StdioServer) lintFilesTool(ctx context.Context, params json.RawMessage) (any, error) {
	var args struct {
		Paths []string `json:"paths"`
		Rules []string `json:"rules"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if len(args.Paths) == 0 {
		return nil, NewMCPError(InvalidParams, "paths must not be empty")
	}
	l, err := s.linterFor(args.Rules)
	if err != nil {
		return nil, err
	}

	include, exclude := s.config.Include, s.config.Exclude
	if len(include) == 0 {
		include = core.DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = core.DefaultExclude
	}
	paths, err := core.NewFileWalker().Collect(ctx, args.Paths, include, exclude)
	if err != nil {
		return nil, WrapError(FileSystemError, "failed to collect files", err)
	}
	results, err := l.LintFiles(ctx, paths, false)
	if err != nil {
		return nil, WrapError(LintFailed, "lint cancelled", err)
	}

	files := make([]fileResult, 0, len(results))
	var b strings.Builder
	problems := 0
	for _, res := range results {
		fr := fileResult{Path: res.Path, Diagnostics: nonNil(res.Diagnostics)}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			fmt.Fprintf(&b, "✗ %s: %v\n", res.Path, res.Err)
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintf(&b, "%s:%s\n", res.Path, d)
		}
		problems += len(res.Diagnostics)
		files = append(files, fr)
	}
	fmt.Fprintf(&b, "%d problems in %d files", problems, len(files))
	return toolResult(b.String(), map[string]any{"files": files, "problems": problems}), nil
}

type ruleInfo struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Fixable              bool              `json:"fixable"`
	HasSuggestions       bool              `json:"hasSuggestions"`
	RequiresTypeChecking bool              `json:"requiresTypeChecking"`
	Docs                 string            `json:"docs"`
	Messages             map[string]string `json:"messages"`
}

func (s *StdioServer) listRulesTool(context.Context, json.RawMessage) (any, error) {
	infos := make([]ruleInfo, 0, len(s.config.Rules))
	var b strings.Builder
	for _, r := range s.config.Rules {
		infos = append(infos, ruleInfo{
			Name:                 r.Name,
			Description:          r.Meta.Description,
			Fixable:              r.Meta.Fixable,
			HasSuggestions:       r.Meta.HasSuggestions,
			RequiresTypeChecking: r.Meta.RequiresTypeChecking,
			Docs:                 rules.DocsURL(r.Name),
			Messages:             r.Meta.Messages,
		})
		fmt.Fprintf(&b, "• %s: %s\n", r.Name, r.Meta.Description)
	}
	return toolResult(strings.TrimSuffix(b.String(), "\n"), map[string]any{"rules": infos}), nil
}

func toolResult(text string, structured map[string]any) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"structuredContent": structured,
	}
}

func describe(diags []rule.Diagnostic) string {
	if len(diags) == 0 {
		return "No problems found"
	}
	fixable := 0
	lines := make([]string, 0, len(diags)+1)
	for _, d := range diags {
		if d.Fixable() {
			fixable++
		}
		lines = append(lines, d.String())
	}
	lines = append(lines, fmt.Sprintf("%d problems (%d fixable)", len(diags), fixable))
	return strings.Join(lines, "\n")
}

func nonNil(diags []rule.Diagnostic) []rule.Diagnostic {
	if diags == nil {
		return []rule.Diagnostic{}
	}
	return diags
}

func syntaxErrors(errs []ast.SyntaxError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
