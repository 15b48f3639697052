package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/pegasus/internal/ast"
	"github.com/termfx/pegasus/internal/linter"
	"github.com/termfx/pegasus/internal/rule"
	"github.com/termfx/pegasus/models"
)

func memoryStore(t *testing.T) *Store {
	t.Helper()
	db, err := Connect(":memory:", Options{})
	require.NoError(t, err)
	s := NewStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name          string
		dsn           string
		opts          Options
		errorContains string
	}{
		{name: "memory", dsn: ":memory:"},
		{name: "memory with debug", dsn: ":memory:", opts: Options{Debug: true}},
		{name: "file in new directory", dsn: filepath.Join(t.TempDir(), "nested", "runs.db")},
		{name: "empty dsn", dsn: "", errorContains: "dsn is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Connect(tt.dsn, tt.opts)
			if tt.errorContains != "" {
				assert.ErrorContains(t, err, tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.True(t, db.Migrator().HasTable(&models.Run{}))
			assert.True(t, db.Migrator().HasTable(&models.Finding{}))
			sqlDB, err := db.DB()
			require.NoError(t, err)
			sqlDB.Close()
		})
	}
}

func TestConnectCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "runs.db")
	db, err := Connect(path, Options{})
	require.NoError(t, err)
	NewStore(db).Close()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"libsql://db.turso.io":   true,
		"https://db.turso.io":    true,
		"http://127.0.0.1:8080":  true,
		"runs.db":                false,
		"./.pegasus/runs.db":     false,
		":memory:":               false,
		"/var/lib/libsql/db.sql": false,
	}
	for dsn, want := range tests {
		assert.Equal(t, want, isURL(dsn), dsn)
	}
}

func sampleResults() []*linter.Result {
	return []*linter.Result{
		{
			Path:     "src/a.js",
			Language: ast.JavaScript,
			Fixed:    2,
			Diagnostics: []rule.Diagnostic{
				{
					Rule:      "prefer-array-some",
					MessageID: "some",
					Message:   "Prefer `.some(…)` over `.find(…)`.",
					Data:      map[string]string{"method": "find"},
					Start:     rule.Position{Line: 3, Column: 5},
					End:       rule.Position{Line: 3, Column: 9},
					Suggestions: []rule.SuggestionResult{
						{MessageID: "someSuggestion"},
					},
				},
				{
					Rule:      "prefer-string-slice",
					MessageID: "substr",
					Start:     rule.Position{Line: 1, Column: 1},
					End:       rule.Position{Line: 1, Column: 20},
				},
			},
		},
		{Path: "src/b.ts"},
		{Path: "src/c.js", Err: os.ErrNotExist},
	}
}

func TestNewRun(t *testing.T) {
	started := time.Now().Add(-time.Second)
	run, err := NewRun("src", []string{"prefer-array-some"}, true, started, sampleResults())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Files)
	assert.Equal(t, 2, run.Diagnostics)
	assert.Equal(t, 2, run.Fixed)
	assert.Equal(t, 1, run.Failed)
	assert.True(t, run.Fix)
	assert.False(t, run.FinishedAt.Before(started))

	var rules []string
	require.NoError(t, json.Unmarshal(run.Rules, &rules))
	assert.Equal(t, []string{"prefer-array-some"}, rules)

	require.Len(t, run.Findings, 2)
	some := run.Findings[0]
	assert.Equal(t, run.ID, some.RunID)
	assert.True(t, some.HasSuggestions)
	assert.False(t, some.Fixable)
	assert.JSONEq(t, `{"method":"find"}`, string(some.Data))
	assert.Nil(t, run.Findings[1].Data)
}

func TestStoreRoundTrip(t *testing.T) {
	s := memoryStore(t)

	older, err := NewRun(".", nil, false, time.Now().Add(-time.Hour), nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(older))

	run, err := NewRun("src", []string{"prefer-array-some"}, false, time.Now(), sampleResults())
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(run))

	runs, err := s.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	limited, err := s.Runs(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	findings, err := s.Findings(run.ID)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "prefer-string-slice", findings[0].Rule, "ordered by line")
	assert.Equal(t, 3, findings[1].Line)

	none, err := s.Findings(older.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveRunAssignsID(t *testing.T) {
	s := memoryStore(t)
	run := &models.Run{StartedAt: time.Now(), Findings: []models.Finding{{File: "a.js", Rule: "r"}}}
	require.NoError(t, s.SaveRun(run))
	assert.NotEmpty(t, run.ID)

	findings, err := s.Findings(run.ID)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, run.ID, findings[0].RunID)
}
