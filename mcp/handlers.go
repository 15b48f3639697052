package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ServerVersion is reported in serverInfo.
const ServerVersion = "0.3.0"

func (s *StdioServer) handleInitialize(req Request) Response {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, InvalidParams, "Invalid initialize params")
		}
		s.debugLog("Client: %s v%s, Protocol: %s",
			params.ClientInfo.Name, params.ClientInfo.Version, params.ProtocolVersion)
	}

	return SuccessResponse(req.ID, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]any{
			"name":    "pegasus",
			"version": ServerVersion,
		},
	})
}

func (s *StdioServer) handleInitialized(req Request) Response {
	s.debugLog("Initialization complete")
	if req.ID == nil {
		return Response{}
	}
	return SuccessResponse(req.ID, map[string]any{})
}

func (s *StdioServer) handleListTools(req Request) Response {
	return SuccessResponse(req.ID, map[string]any{"tools": GetToolDefinitions()})
}

func (s *StdioServer) handleCallTool(ctx context.Context, req Request) Response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid params structure")
	}
	s.debugLog("Calling tool: %s", params.Name)

	s.mu.RLock()
	handler, ok := s.tools[params.Name]
	s.mu.RUnlock()
	if !ok {
		return ErrorResponse(req.ID, MethodNotFound, fmt.Sprintf("Tool not found: %s", params.Name))
	}

	result, err := handler(ctx, params.Arguments)
	if err != nil {
		var mcpErr *MCPError
		if errors.As(err, &mcpErr) {
			return ErrorResponse(req.ID, mcpErr.Code, mcpErr.Message, mcpErr.Data)
		}
		return ErrorResponse(req.ID, InternalError, err.Error())
	}
	return SuccessResponse(req.ID, result)
}
