package model

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationRecord persists one evaluated story so the dashboard can fetch
// results after the fact. CriterionScores and Suggestions are the JSON the
// engine produced, stored as-is.
type EvaluationRecord struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BatchID         *uuid.UUID `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	StoryID         string     `gorm:"type:varchar(64);index" json:"story_id"`
	Historia        string     `gorm:"type:text" json:"historia"`
	Sprint          string     `gorm:"type:varchar(20)" json:"sprint"`
	Prioridad       string     `gorm:"type:varchar(20)" json:"prioridad"`
	ModeUsed        string     `gorm:"type:varchar(40)" json:"mode_used"`
	CriterionScores string     `gorm:"type:jsonb" json:"criterion_scores"`
	PassedCount     int        `json:"passed_count"`
	Suggestions     string     `gorm:"type:jsonb" json:"suggestions"`
	EstimatedHours  *float64   `gorm:"type:float" json:"estimated_hours,omitempty"`
	EvalError       string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (r *EvaluationRecord) TableName() string {
	return "evaluation_records"
}
