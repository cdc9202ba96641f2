package dto

import (
	"time"

	"github.com/fadilmartias/invest-analyzer/internal/invest"
	"github.com/google/uuid"
)

type EvaluateStoryRequest struct {
	Historia string `json:"historia"`
	ID       string `json:"id"`
}

type SimilarStoriesRequest struct {
	Historia string `json:"historia"`
	TopK     int    `json:"top_k"`
}

// BacklogStoryDTO is one row of an imported backlog (Azure DevOps export
// mapped to internal fields).
type BacklogStoryDTO struct {
	ID        string `json:"id"`
	Historia  string `json:"historia"`
	Sprint    string `json:"sprint"`
	Prioridad string `json:"prioridad"`
}

// HistoricalStoryDTO is one row of the historical dataset used for
// estimation context: a finished story with its real hours.
type HistoricalStoryDTO struct {
	ID              string  `json:"id"`
	Historia        string  `json:"historia"`
	Horas           float64 `json:"horas"`
	CriteriosINVEST int     `json:"criterios_invest"`
	Complejidad     string  `json:"complejidad"`
}

type EvaluationRecordDTO struct {
	ID        uuid.UUID     `json:"id"`
	StoryID   string        `json:"story_id"`
	Result    invest.Result `json:"result"`
	Sprint    string        `json:"sprint,omitempty"`
	Prioridad string        `json:"prioridad,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type BacklogBatchDTO struct {
	ID        uuid.UUID             `json:"id"`
	Status    string                `json:"status"`
	Source    string                `json:"source"`
	Summary   *invest.Summary       `json:"summary,omitempty"`
	Results   []EvaluationRecordDTO `json:"results,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type SimilarStoryDTO struct {
	Historia        string  `json:"historia"`
	Horas           float64 `json:"horas"`
	CriteriosINVEST int     `json:"criterios_invest"`
	Complejidad     string  `json:"complejidad"`
	Distance        float64 `json:"distance"`
}
