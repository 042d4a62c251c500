// Package model defines the data models for the application.
// All models use GORM for ORM operations with SQLite database.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StringArray is a custom type for storing string arrays in SQLite
type StringArray []string

// Value implements driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, s)
}

// JSONMap is a custom type for storing JSON maps in SQLite
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	data, err := json.Marshal(j)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, j)
}

// GenerationStatus represents the status of a generation task
type GenerationStatus string

const (
	GenerationStatusPending   GenerationStatus = "pending"
	GenerationStatusRunning   GenerationStatus = "running"
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// GenerationKind distinguishes full documentation runs from tutorial runs
type GenerationKind string

const (
	GenerationKindDocumentation GenerationKind = "documentation"
	GenerationKindTutorial      GenerationKind = "tutorial"
)

// Generation represents a documentation generation task and its resulting document
type Generation struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Task identification
	Kind         GenerationKind `gorm:"size:50;not null;default:documentation;index" json:"kind"`
	TutorialType string         `gorm:"size:50" json:"tutorial_type,omitempty"` // set when Kind is tutorial

	// Request parameters
	RepoURL            string      `gorm:"size:512;not null;index" json:"repo_url"`
	ProjectDescription string      `gorm:"type:text" json:"project_description,omitempty"`
	TargetAudience     string      `gorm:"size:50;not null;default:intermediate" json:"target_audience"`
	Tone               string      `gorm:"size:50;not null;default:professional" json:"tone"`
	OutputFormat       string      `gorm:"size:50;not null;default:readme" json:"output_format"`
	PrimaryLanguage    string      `gorm:"size:100" json:"primary_language,omitempty"`
	SelectedComponents StringArray `gorm:"type:text" json:"selected_components"`

	// Status and progress
	Status    GenerationStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	StepIndex int              `gorm:"default:0" json:"step_index"` // current phase index (0-based)
	StepLabel string           `gorm:"size:100" json:"step_label"`  // current phase label, empty when idle
	Percent   int              `gorm:"default:0" json:"percent"`

	// Degraded is true when the document came from the local fallback
	// generator instead of the upstream service
	Degraded bool `gorm:"default:false" json:"degraded"`

	// Document content. OriginalDocument keeps the text as generated so
	// edits can be traced back to it.
	Document         string `gorm:"type:text" json:"document,omitempty"`
	OriginalDocument string `gorm:"type:text" json:"-"`

	// Metadata carries the generation response metadata (repo analysis,
	// request params, mock flag)
	Metadata JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	// Timing
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    int64      `json:"duration,omitempty"` // milliseconds

	// Error handling
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`
}

// Edited reports whether the stored document diverged from the generated text.
func (g *Generation) Edited() bool {
	return g.OriginalDocument != "" && g.Document != g.OriginalDocument
}

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&Generation{},
		&TaskLog{},
	}
}
