// Package models holds the persisted records of lint runs.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Run is one invocation of the linter
type Run struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time

	Root  string         `gorm:"type:text"`
	Rules datatypes.JSON // enabled rule names
	Fix   bool           `gorm:"default:false"`

	// Statistics
	Files       int `gorm:"default:0"`
	Diagnostics int `gorm:"default:0"`
	Fixed       int `gorm:"default:0"`
	Failed      int `gorm:"default:0"`

	Findings []Finding `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// Finding is a diagnostic left in a file after the run
type Finding struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"type:varchar(36);index;not null"`

	File      string `gorm:"type:text;not null"`
	Rule      string `gorm:"type:varchar(100);index;not null"`
	MessageID string `gorm:"type:varchar(100)"`
	Message   string `gorm:"type:text"`

	// 1-based positions
	Line      int
	Column    int
	EndLine   int
	EndColumn int

	Fixable        bool
	HasSuggestions bool
	Data           datatypes.JSON // message template data
}

func (Run) TableName() string     { return "runs" }
func (Finding) TableName() string { return "findings" }
