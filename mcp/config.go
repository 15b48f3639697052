package mcp

import (
	"io"
	"os"

	"github.com/termfx/pegasus/internal/linter"
	"github.com/termfx/pegasus/internal/rule"
)

// Config holds the MCP server configuration
type Config struct {
	// Rules enabled when a call names none.
	Rules     []*rule.Rule
	MaxPasses int
	Workers   int

	// Include and Exclude apply to lint_files directory walks.
	Include []string
	Exclude []string

	Debug     bool
	LogWriter io.Writer // debug output, stderr when nil
}

// DefaultConfig returns a config with every limit at its linter default
func DefaultConfig() Config {
	return Config{
		MaxPasses: linter.DefaultMaxPasses,
		Workers:   1,
		LogWriter: os.Stderr,
	}
}
