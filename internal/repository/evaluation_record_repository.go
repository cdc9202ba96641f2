package repository

import (
	"github.com/fadilmartias/invest-analyzer/internal/model"
	"github.com/fadilmartias/invest-analyzer/internal/response"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db}
}

func (r *EvaluationRepository) CreateRecord(record *model.EvaluationRecord) error {
	return r.db.Create(record).Error
}

func (r *EvaluationRepository) CreateRecords(records []model.EvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

func (r *EvaluationRepository) CreateBatch(batch *model.BacklogBatch) error {
	return r.db.Create(batch).Error
}

func (r *EvaluationRepository) UpdateBatch(batch *model.BacklogBatch) error {
	return r.db.Save(batch).Error
}

func (r *EvaluationRepository) FindBatchByID(id string) (*model.BacklogBatch, error) {
	var batch model.BacklogBatch
	err := r.db.First(&batch, "id = ?", id).Error
	return &batch, err
}

func (r *EvaluationRepository) FindRecordsByBatchID(batchID string) ([]model.EvaluationRecord, error) {
	var records []model.EvaluationRecord
	err := r.db.Where("batch_id = ?", batchID).Order("created_at asc").Find(&records).Error
	return records, err
}

func (r *EvaluationRepository) ListRecords(page, pageSize int) ([]model.EvaluationRecord, *response.Pagination, error) {
	var records []model.EvaluationRecord
	var total int64

	if err := r.db.Model(&model.EvaluationRecord{}).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&records).Error
	if err != nil {
		return nil, nil, err
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	pagination := &response.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       offset + 1,
		To:         offset + len(records),
	}
	if len(records) == 0 {
		pagination.From = 0
		pagination.To = 0
	}
	return records, pagination, nil
}
