package models

import (
	"time"

	"github.com/google/uuid"
)

type RunKind string

const (
	RunKindExtract RunKind = "extract"
	RunKindScore   RunKind = "score"
	RunKindSuggest RunKind = "suggest"
)

type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusPartial    RunStatus = "partial"
	RunStatusFailed     RunStatus = "failed"
)

// ScoringRun is the audit record of one extract, score or suggest request.
type ScoringRun struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Kind           RunKind   `gorm:"type:text;not null" json:"kind"`
	Status         RunStatus `gorm:"type:text;not null;default:'processing'" json:"status"`
	Criteria       string    `gorm:"type:text" json:"-"`
	FileCount      int       `gorm:"not null;default:0" json:"file_count"`
	SucceededCount int       `gorm:"not null;default:0" json:"succeeded_count"`
	FailedCount    int       `gorm:"not null;default:0" json:"failed_count"`
	ErrorMessage   *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Candidates []CandidateResult `gorm:"foreignKey:RunID" json:"-"`
}

func (ScoringRun) TableName() string {
	return "scoring_runs"
}

// CandidateResult is one resume row of a ScoringRun. Scores and Suggestions
// are stored as JSON text.
type CandidateResult struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RunID         uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	Position      int       `gorm:"not null" json:"position"`
	FileName      string    `gorm:"type:text;not null" json:"file_name"`
	CandidateName string    `gorm:"type:text" json:"candidate_name,omitempty"`
	Scores        *string   `gorm:"type:text" json:"-"`
	TotalScore    *int      `json:"total_score,omitempty"`
	Suggestions   *string   `gorm:"type:text" json:"-"`
	ErrorMessage  *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CandidateResult) TableName() string {
	return "candidate_results"
}
