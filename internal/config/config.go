// Package config loads lint settings from defaults, a project file, .env and
// PEGASUS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/termfx/pegasus/core"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/internal/rules"
)

// FileName is the project configuration file looked up in the root.
const FileName = ".pegasus.toml"

// Config holds the lint configuration.
type Config struct {
	Rules     []string `toml:"rules"` // empty enables every rule
	Disable   []string `toml:"disable"`
	Include   []string `toml:"include"`
	Exclude   []string `toml:"exclude"`
	MaxPasses int      `toml:"max_passes"`
	Workers   int      `toml:"workers"`
	Database  string   `toml:"database"`
	Debug     bool     `toml:"debug"`

	// AuthToken authenticates remote libsql databases. Only read from the
	// environment.
	AuthToken string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Include:   append([]string(nil), core.DefaultInclude...),
		Exclude:   append([]string(nil), core.DefaultExclude...),
		MaxPasses: 10,
		Workers:   runtime.NumCPU(),
	}
}

// Load builds the configuration for the project rooted at dir.
func Load(dir string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(filepath.Join(dir, FileName)); err != nil {
		return nil, err
	}
	// .env never overrides variables already set
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PEGASUS_RULES"); v != "" {
		c.Rules = splitList(v)
	}
	if v := os.Getenv("PEGASUS_DATABASE_URL"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("PEGASUS_LIBSQL_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("PEGASUS_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Debug = debug
		}
	}
	if v := os.Getenv("PEGASUS_MAX_PASSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPasses = n
		}
	}
	if v := os.Getenv("PEGASUS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects unknown rule names and out-of-range limits.
func (c *Config) Validate() error {
	for _, names := range [][]string{c.Rules, c.Disable} {
		for _, name := range names {
			if _, ok := rules.Lookup(name); !ok {
				return fmt.Errorf("unknown rule %q", name)
			}
		}
	}
	if c.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be positive, got %d", c.MaxPasses)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// EnabledRules resolves Rules and Disable against the built-in rules.
func (c *Config) EnabledRules() []*rule.Rule {
	disabled := make(map[string]bool, len(c.Disable))
	for _, name := range c.Disable {
		disabled[name] = true
	}

	var selected []*rule.Rule
	if len(c.Rules) == 0 {
		selected = rules.All()
	} else {
		for _, name := range c.Rules {
			if r, ok := rules.Lookup(name); ok {
				selected = append(selected, r)
			}
		}
	}

	out := selected[:0:0]
	seen := make(map[string]bool)
	for _, r := range selected {
		if disabled[r.Name] || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}
