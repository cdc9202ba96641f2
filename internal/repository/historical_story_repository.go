package repository

import (
	"github.com/fadilmartias/invest-analyzer/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type HistoricalStoryRepository struct {
	db *gorm.DB
}

func NewHistoricalStoryRepository(db *gorm.DB) *HistoricalStoryRepository {
	return &HistoricalStoryRepository{db}
}

func (r *HistoricalStoryRepository) CreateStory(story *model.HistoricalStory) error {
	return r.db.Create(story).Error
}

type SimilarStory struct {
	model.HistoricalStory
	Distance float64 `json:"distance"`
}

func (r *HistoricalStoryRepository) SearchSimilar(embedding pgvector.Vector, topK int) ([]SimilarStory, error) {
	var stories []SimilarStory

	// query pgvector <-> operator (Euclidean distance / cosine)
	err := r.db.Raw(`
        SELECT *, embedding <-> ? AS distance
        FROM historical_stories
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, embedding, topK).Scan(&stories).Error

	return stories, err
}

func (r *HistoricalStoryRepository) GetStories() ([]model.HistoricalStory, error) {
	var stories []model.HistoricalStory
	err := r.db.Find(&stories).Error
	return stories, err
}
