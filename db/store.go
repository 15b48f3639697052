package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/termfx/pegasus/internal/linter"
	"github.com/termfx/pegasus/models"
)

// Store reads and writes lint runs.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open connection.
func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun stores run and its findings in one transaction. An empty ID is
// filled with a new UUID.
func (s *Store) SaveRun(run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(run).Error; err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		if len(run.Findings) == 0 {
			return nil
		}
		for i := range run.Findings {
			run.Findings[i].RunID = run.ID
		}
		// batches stay below sqlite's bound variable limit
		if err := tx.CreateInBatches(run.Findings, 200).Error; err != nil {
			return fmt.Errorf("failed to save findings: %w", err)
		}
		return nil
	})
}

// Runs returns the most recent runs first. limit <= 0 returns all of them.
func (s *Store) Runs(limit int) ([]models.Run, error) {
	var runs []models.Run
	q := s.db.Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Findings returns the findings of a run in file and position order.
func (s *Store) Findings(runID string) ([]models.Finding, error) {
	var findings []models.Finding
	err := s.db.Where("run_id = ?", runID).
		Order("file, line, \"column\"").
		Find(&findings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return findings, nil
}

// NewRun summarizes linter results into a Run ready to be saved.
func NewRun(root string, rules []string, fix bool, started time.Time, results []*linter.Result) (*models.Run, error) {
	ruleNames, err := json.Marshal(rules)
	if err != nil {
		return nil, err
	}
	run := &models.Run{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Root:       root,
		Rules:      datatypes.JSON(ruleNames),
		Fix:        fix,
		Files:      len(results),
	}
	for _, res := range results {
		if res.Err != nil {
			run.Failed++
			continue
		}
		run.Fixed += res.Fixed
		run.Diagnostics += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			f := models.Finding{
				RunID:          run.ID,
				File:           res.Path,
				Rule:           d.Rule,
				MessageID:      d.MessageID,
				Message:        d.Message,
				Line:           d.Start.Line,
				Column:         d.Start.Column,
				EndLine:        d.End.Line,
				EndColumn:      d.End.Column,
				Fixable:        d.Fixable(),
				HasSuggestions: len(d.Suggestions) > 0,
			}
			if len(d.Data) > 0 {
				data, err := json.Marshal(d.Data)
				if err != nil {
					return nil, err
				}
				f.Data = datatypes.JSON(data)
			}
			run.Findings = append(run.Findings, f)
		}
	}
	return run, nil
}
