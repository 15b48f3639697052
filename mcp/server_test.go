package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/pegasus/internal/rule"
)

func newTestServer(t *testing.T, input string) (*StdioServer, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogWriter = io.Discard
	return NewStdioServer(cfg, strings.NewReader(input), &out), &out
}

// serve runs the server over the given request lines and decodes every
// response line.
func serve(t *testing.T, lines ...string) []Response {
	t.Helper()
	s, out := newTestServer(t, strings.Join(lines, "\n")+"\n")
	require.NoError(t, s.Start(context.Background()))

	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp), line)
		responses = append(responses, resp)
	}
	return responses
}

func callTool(t *testing.T, s *StdioServer, name string, args any) Response {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	params, err := json.Marshal(map[string]any{"name": name, "arguments": json.RawMessage(raw)})
	require.NoError(t, err)
	return s.handleRequest(context.Background(), Request{JSONRPC: JSONRPCVersion, ID: 1, Method: "tools/call", Params: params})
}

func structured(t *testing.T, resp Response) map[string]any {
	t.Helper()
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	content, ok := result["structuredContent"].(map[string]any)
	require.True(t, ok)
	return content
}

func TestInitialize(t *testing.T) {
	responses := serve(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test","version":"1"}}}`,
	)
	require.Len(t, responses, 1)
	result := responses[0].Result.(map[string]any)
	assert.Equal(t, ProtocolVersion, result["protocolVersion"])
	assert.Equal(t, "pegasus", result["serverInfo"].(map[string]any)["name"])
}

func TestStartMessageHandling(t *testing.T) {
	responses := serve(t,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{bad json`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"nope"}`,
		`{"jsonrpc":"1.0","id":4,"method":"ping"}`,
	)
	require.Len(t, responses, 4)

	require.NotNil(t, responses[0].Error)
	assert.Equal(t, ParseError, responses[0].Error.Code)
	assert.Nil(t, responses[0].ID)

	assert.Equal(t, float64(2), responses[1].ID)
	assert.Nil(t, responses[1].Error)

	require.NotNil(t, responses[2].Error)
	assert.Equal(t, MethodNotFound, responses[2].Error.Code)

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, InvalidRequest, responses[3].Error.Code)
}

func TestStartCancelled(t *testing.T) {
	s, _ := newTestServer(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t, "")
	resp := s.handleRequest(context.Background(), Request{JSONRPC: JSONRPCVersion, ID: 1, Method: "tools/list"})
	require.Nil(t, resp.Error)

	tools := resp.Result.(map[string]any)["tools"].([]ToolDefinition)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"lint", "fix", "lint_files", "list_rules"}, names)
}

func TestLintTool(t *testing.T) {
	s, _ := newTestServer(t, "")
	resp := callTool(t, s, "lint", map[string]any{
		"source":   "const bar = [[1],[2],[3]].map(i => [i]).flat();\n",
		"language": "javascript",
	})
	content := structured(t, resp)

	diags := content["diagnostics"].([]rule.Diagnostic)
	require.Len(t, diags, 1)
	assert.Equal(t, "prefer-array-flat-map", diags[0].Rule)
	assert.Empty(t, content["syntaxErrors"])

	text := resp.Result.(map[string]any)["content"].([]map[string]any)[0]["text"].(string)
	assert.Contains(t, text, "1 problems (1 fixable)")
}

func TestLintToolRuleSubset(t *testing.T) {
	s, _ := newTestServer(t, "")
	resp := callTool(t, s, "lint", map[string]any{
		"source": "foo.substr(1);\nconst bar = [1].map(i => [i]).flat();\n",
		"path":   "mixed.ts",
		"rules":  []string{"prefer-string-slice"},
	})
	diags := structured(t, resp)["diagnostics"].([]rule.Diagnostic)
	require.Len(t, diags, 1)
	assert.Equal(t, "prefer-string-slice", diags[0].Rule)
}

func TestFixTool(t *testing.T) {
	s, _ := newTestServer(t, "")
	resp := callTool(t, s, "fix", map[string]any{
		"source": "foo.substr(1);\n",
		"path":   "a.js",
	})
	content := structured(t, resp)
	assert.Equal(t, "foo.slice(1);\n", content["output"])
	assert.Equal(t, 1, content["fixed"])
	assert.Equal(t, 1, content["passes"])
	assert.Contains(t, content["diff"], "+foo.slice(1);")
	assert.Empty(t, content["diagnostics"])
}

func TestToolErrors(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args any
		code int
	}{
		{"unknown tool", "nope", map[string]any{}, MethodNotFound},
		{"bad arguments", "lint", "not an object", InvalidParams},
		{"no language", "lint", map[string]any{"source": "a"}, InvalidParams},
		{"bad language", "lint", map[string]any{"source": "a", "language": "python"}, UnsupportedLanguage},
		{"bad extension", "fix", map[string]any{"source": "a", "path": "a.py"}, UnsupportedLanguage},
		{"unknown rule", "lint", map[string]any{"source": "a", "language": "tsx", "rules": []string{"nope"}}, UnknownRule},
		{"no paths", "lint_files", map[string]any{"paths": []string{}}, InvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, "")
			resp := callTool(t, s, tt.tool, tt.args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestLintFilesTool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("foo.substr(1);\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ts"), []byte("const n = 1;\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "c.js"), []byte("foo.substr(1);\n"), 0o644))

	s, _ := newTestServer(t, "")
	content := structured(t, callTool(t, s, "lint_files", map[string]any{"paths": []string{dir}}))
	assert.Equal(t, 1, content["problems"])
	files := content["files"].([]fileResult)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.js"), files[0].Path)
	require.Len(t, files[0].Diagnostics, 1)
	assert.Empty(t, files[1].Diagnostics)
}

func TestListRulesTool(t *testing.T) {
	s, _ := newTestServer(t, "")
	content := structured(t, callTool(t, s, "list_rules", map[string]any{}))
	infos := content["rules"].([]ruleInfo)
	require.Len(t, infos, 4)
	assert.Equal(t, "prefer-array-flat-map", infos[0].Name)
	assert.True(t, infos[0].Fixable)
	assert.Contains(t, infos[0].Docs, "prefer-array-flat-map.md")
}

func TestDebugLog(t *testing.T) {
	var logs, out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.LogWriter = &logs
	s := NewStdioServer(cfg, strings.NewReader(""), &out)

	callTool(t, s, "list_rules", map[string]any{})
	assert.Contains(t, logs.String(), "[DEBUG] Calling tool: list_rules")
}

func TestMCPError(t *testing.T) {
	assert.Equal(t, "boom (10003)", NewMCPError(LintFailed, "boom").Error())
	assert.Equal(t, "boom (10003): x", WrapError(LintFailed, "boom", errors.New("x")).Error())
	assert.Equal(t, "boom (10001)", WrapError(UnsupportedLanguage, "boom", nil).Error())
}
