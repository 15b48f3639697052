package mcp

import "fmt"

// Error codes following JSON-RPC 2.0 and the linter's own failures
const (
	ParseError     = -32700 // Invalid JSON was received
	InvalidRequest = -32600 // The JSON sent is not a valid Request object
	MethodNotFound = -32601 // The method does not exist
	InvalidParams  = -32602 // Invalid method parameters
	InternalError  = -32603 // Internal JSON-RPC error

	UnsupportedLanguage = 10001 // Language or file extension not handled
	UnknownRule         = 10002 // Rule name not registered
	LintFailed          = 10003 // Analysis of a source aborted
	FileSystemError     = 10004 // Files could not be discovered or read
)

// MCPError is a tool failure carrying a protocol error code
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (%d): %v", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// NewMCPError creates an error with optional data
func NewMCPError(code int, message string, data ...any) *MCPError {
	err := &MCPError{Code: code, Message: message}
	if len(data) > 0 {
		err.Data = data[0]
	}
	return err
}

// WrapError attaches err's text as data
func WrapError(code int, message string, err error) *MCPError {
	if err == nil {
		return NewMCPError(code, message)
	}
	return NewMCPError(code, message, err.Error())
}
