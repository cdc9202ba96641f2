package model

import (
	"time"

	"github.com/google/uuid"
)

// BacklogBatch tracks one asynchronous backlog evaluation run.
type BacklogBatch struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status       string    `gorm:"type:varchar(50)" json:"status"` // "processing", "completed", "failed"
	Source       string    `gorm:"type:varchar(255)" json:"source"`
	TotalStories int       `json:"total_stories"`
	Summary      string    `gorm:"type:jsonb" json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (b *BacklogBatch) TableName() string {
	return "backlog_batches"
}
