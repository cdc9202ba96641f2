package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// HistoricalStory is a finished story with its real development hours.
// The embedding feeds the similar-story search that contextualizes new
// estimates.
type HistoricalStory struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Historia        string          `gorm:"type:text" json:"historia"`
	Horas           float64         `gorm:"type:float" json:"horas"`
	CriteriosINVEST int             `gorm:"column:criterios_invest" json:"criterios_invest"`
	Complejidad     string          `gorm:"type:varchar(20)" json:"complejidad"`
	Embedding       pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (h *HistoricalStory) TableName() string {
	return "historical_stories"
}
