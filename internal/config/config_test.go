package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"PEGASUS_RULES", "PEGASUS_DATABASE_URL", "PEGASUS_LIBSQL_AUTH_TOKEN",
	"PEGASUS_DEBUG", "PEGASUS_MAX_PASSES", "PEGASUS_WORKERS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Rules)
	assert.Equal(t, 10, cfg.MaxPasses)
	assert.Positive(t, cfg.Workers)
	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
	assert.NotEmpty(t, cfg.Include)
	assert.NoError(t, cfg.Validate())
	assert.Len(t, cfg.EnabledRules(), 4)
}

func TestLoadWithoutFiles(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
rules = ["prefer-array-some", "prefer-string-slice"]
disable = ["prefer-string-slice"]
exclude = ["**/vendor/**"]
max_passes = 3
database = "runs.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/vendor/**"}, cfg.Exclude)
	assert.Equal(t, 3, cfg.MaxPasses)
	assert.Equal(t, "runs.db", cfg.Database)
	require.NoError(t, cfg.Validate())

	enabled := cfg.EnabledRules()
	require.Len(t, enabled, 1)
	assert.Equal(t, "prefer-array-some", enabled[0].Name)
}

func TestLoadFileErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "rules = [", "failed to parse TOML"},
		{"unknown key", "colour = true", `unknown key "colour"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0o644))
			_, err := Load(dir)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("max_passes = 3\n"), 0o644))
	t.Setenv("PEGASUS_RULES", "prefer-array-flat-map, prefer-array-index-of")
	t.Setenv("PEGASUS_MAX_PASSES", "7")
	t.Setenv("PEGASUS_DEBUG", "true")
	t.Setenv("PEGASUS_WORKERS", "not-a-number")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"prefer-array-flat-map", "prefer-array-index-of"}, cfg.Rules)
	assert.Equal(t, 7, cfg.MaxPasses)
	assert.True(t, cfg.Debug)
	assert.Equal(t, Default().Workers, cfg.Workers)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dotenv := "PEGASUS_DATABASE_URL=libsql://example.turso.io\nPEGASUS_LIBSQL_AUTH_TOKEN=secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("PEGASUS_DATABASE_URL")
		os.Unsetenv("PEGASUS_LIBSQL_AUTH_TOKEN")
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "libsql://example.turso.io", cfg.Database)
	assert.Equal(t, "secret", cfg.AuthToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown rule", func(c *Config) { c.Rules = []string{"no-such-rule"} }, `unknown rule "no-such-rule"`},
		{"unknown disabled rule", func(c *Config) { c.Disable = []string{"nope"} }, `unknown rule "nope"`},
		{"zero passes", func(c *Config) { c.MaxPasses = 0 }, "max_passes must be positive"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestEnabledRulesDeduplicates(t *testing.T) {
	cfg := Default()
	cfg.Rules = []string{"prefer-array-some", "prefer-array-some"}
	assert.Len(t, cfg.EnabledRules(), 1)
}
