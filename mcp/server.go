// Package mcp serves the linter to AI agents over the Model Context
// Protocol: newline-delimited JSON-RPC 2.0 on stdio.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/termfx/pegasus/internal/rules"
)

// ToolHandler handles one tools/call invocation
type ToolHandler func(ctx context.Context, params json.RawMessage) (any, error)

// StdioServer handles MCP communication over a reader and a writer
type StdioServer struct {
	config Config

	reader io.Reader
	writer *bufio.Writer

	tools map[string]ToolHandler
	mu    sync.RWMutex

	debugLog func(format string, args ...any)
}

// NewStdioServer creates a server reading requests from in and writing
// responses to out.
func NewStdioServer(config Config, in io.Reader, out io.Writer) *StdioServer {
	if len(config.Rules) == 0 {
		config.Rules = rules.All()
	}
	if config.MaxPasses <= 0 {
		config.MaxPasses = DefaultConfig().MaxPasses
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	server := &StdioServer{
		config: config,
		reader: in,
		writer: bufio.NewWriter(out),
		tools:  make(map[string]ToolHandler),
	}

	logw := config.LogWriter
	if logw == nil {
		logw = os.Stderr
	}
	if config.Debug {
		server.debugLog = func(format string, args ...any) {
			fmt.Fprintf(logw, "[DEBUG] "+format+"\n", args...)
		}
	} else {
		server.debugLog = func(format string, args ...any) {}
	}

	server.registerBuiltinTools()
	return server
}

// maxMessageSize bounds one request line; sources travel inline.
const maxMessageSize = 16 << 20

// Start processes newline-delimited requests until EOF or until ctx is
// cancelled. A malformed line is answered with a parse error and skipped.
func (s *StdioServer) Start(ctx context.Context) error {
	s.debugLog("MCP server started with %d rules", len(s.config.Rules))
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			msg := fmt.Sprintf("JSON decode error: %v", err)
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				msg = fmt.Sprintf("JSON syntax error at position %d: %v", syntaxErr.Offset, err)
			}
			s.debugLog("%s", msg)
			s.sendResponse(ErrorResponse(nil, ParseError, msg))
			continue
		}

		s.debugLog("Received: %s", req.Method)
		resp := s.handleRequest(ctx, req)
		if req.ID != nil {
			s.sendResponse(resp)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	s.debugLog("EOF received, shutting down")
	return nil
}

func (s *StdioServer) handleRequest(ctx context.Context, req Request) Response {
	if err := ensureVersion(req.JSONRPC); err != nil {
		return ErrorResponse(req.ID, InvalidRequest, err.Error())
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return s.handleInitialized(req)
	case "ping":
		return SuccessResponse(req.ID, map[string]any{})
	case "tools/list":
		return s.handleListTools(req)
	case "tools/call":
		return s.handleCallTool(ctx, req)
	case "prompts/list":
		return SuccessResponse(req.ID, map[string]any{"prompts": []any{}})
	case "resources/list":
		return SuccessResponse(req.ID, map[string]any{"resources": []any{}})
	default:
		return ErrorResponse(req.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *StdioServer) sendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.debugLog("Failed to marshal response: %v", err)
		return
	}
	fmt.Fprintf(s.writer, "%s\n", data)
	s.writer.Flush()
}

// RegisterTool adds or replaces a tool handler
func (s *StdioServer) RegisterTool(name string, handler ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[name] = handler
}
