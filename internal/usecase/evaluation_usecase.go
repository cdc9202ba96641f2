package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/invest-analyzer/internal/dto"
	"github.com/fadilmartias/invest-analyzer/internal/invest"
	"github.com/fadilmartias/invest-analyzer/internal/model"
	"github.com/fadilmartias/invest-analyzer/internal/repository"
	"github.com/fadilmartias/invest-analyzer/internal/response"
	"github.com/fadilmartias/invest-analyzer/internal/service"
	"github.com/fadilmartias/invest-analyzer/internal/util"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ErrEmbeddingsUnavailable marks operations that need the embedding service
// when it was not configured at startup.
var ErrEmbeddingsUnavailable = errors.New("servicio de embeddings no configurado")

type EvaluationUsecase struct {
	agent          *invest.Agent
	evaluationRepo *repository.EvaluationRepository
	historicalRepo *repository.HistoricalStoryRepository
	gemini         service.GeminiServiceInterface
}

func NewEvaluationUsecase(agent *invest.Agent, evaluationRepo *repository.EvaluationRepository, historicalRepo *repository.HistoricalStoryRepository, gemini service.GeminiServiceInterface) *EvaluationUsecase {
	return &EvaluationUsecase{agent: agent, evaluationRepo: evaluationRepo, historicalRepo: historicalRepo, gemini: gemini}
}

// EvaluateStory runs one synchronous evaluation and persists the record.
// Persistence failure is logged, not returned: the caller already has the
// evaluation and the ledger keeps the copy for summaries.
func (uc *EvaluationUsecase) EvaluateStory(ctx context.Context, req dto.EvaluateStoryRequest) invest.Result {
	result := uc.agent.EvaluateStory(ctx, req.Historia, req.ID)

	record := recordFromResult(result, nil, "", "")
	if err := uc.evaluationRepo.CreateRecord(record); err != nil {
		log.Printf("No se pudo persistir la evaluación %s: %v", result.ID, err)
	}
	return result
}

// SubmitBacklog registers a batch and evaluates it in the background,
// returning the batch id immediately.
func (uc *EvaluationUsecase) SubmitBacklog(rows []util.BacklogRow, source string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("el backlog no contiene historias")
	}

	batch := &model.BacklogBatch{
		Status:       "processing",
		Source:       source,
		TotalStories: len(rows),
		Summary:      "{}",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := uc.evaluationRepo.CreateBatch(batch); err != nil {
		return "", err
	}

	go uc.evaluateBacklog(batch, rows)

	return batch.ID.String(), nil
}

func (uc *EvaluationUsecase) evaluateBacklog(batch *model.BacklogBatch, rows []util.BacklogRow) {
	ctx := context.Background()

	uc.agent.ClearLedger()
	stories := make([]invest.Story, len(rows))
	for i, row := range rows {
		stories[i] = invest.Story{ID: row.ID, Text: row.Historia}
	}

	results := uc.agent.EvaluateBatch(ctx, stories)

	records := make([]model.EvaluationRecord, 0, len(results))
	for i, result := range results {
		record := recordFromResult(result, &batch.ID, rows[i].Sprint, rows[i].Prioridad)
		records = append(records, *record)
	}
	if err := uc.evaluationRepo.CreateRecords(records); err != nil {
		log.Printf("No se pudieron persistir los resultados del lote %s: %v", batch.ID, err)
		batch.Status = "failed"
		batch.UpdatedAt = time.Now()
		_ = uc.evaluationRepo.UpdateBatch(batch)
		return
	}

	summary := uc.agent.Summary()
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		summaryJSON = []byte("{}")
	}

	batch.Status = "completed"
	batch.Summary = string(summaryJSON)
	batch.UpdatedAt = time.Now()
	if err := uc.evaluationRepo.UpdateBatch(batch); err != nil {
		log.Printf("No se pudo cerrar el lote %s: %v", batch.ID, err)
	}
}

// GetBatch returns batch status with its results once evaluated.
func (uc *EvaluationUsecase) GetBatch(id string) (*dto.BacklogBatchDTO, error) {
	batch, err := uc.evaluationRepo.FindBatchByID(id)
	if err != nil {
		return nil, err
	}

	out := &dto.BacklogBatchDTO{
		ID:        batch.ID,
		Status:    batch.Status,
		Source:    batch.Source,
		CreatedAt: batch.CreatedAt,
		UpdatedAt: batch.UpdatedAt,
	}

	if batch.Status == "completed" {
		var summary invest.Summary
		if err := json.Unmarshal([]byte(batch.Summary), &summary); err == nil {
			out.Summary = &summary
		}
		records, err := uc.evaluationRepo.FindRecordsByBatchID(id)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			out.Results = append(out.Results, recordToDTO(record))
		}
	}
	return out, nil
}

// ExportBatch renders the batch results as an Azure DevOps work item CSV.
func (uc *EvaluationUsecase) ExportBatch(id string) ([]byte, error) {
	batch, err := uc.evaluationRepo.FindBatchByID(id)
	if err != nil {
		return nil, err
	}
	if batch.Status != "completed" {
		return nil, fmt.Errorf("el lote %s aún no está completado (estado %s)", id, batch.Status)
	}

	records, err := uc.evaluationRepo.FindRecordsByBatchID(id)
	if err != nil {
		return nil, err
	}

	rows := make([]util.ExportRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, util.ExportRow{
			ID:              record.StoryID,
			Historia:        record.Historia,
			Sprint:          record.Sprint,
			Prioridad:       record.Prioridad,
			CriteriosINVEST: record.PassedCount,
			Horas:           record.EstimatedHours,
		})
	}

	var buf bytes.Buffer
	if err := util.WriteAzureDevOpsCSV(&buf, rows, "User Story"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ListResults pages through all persisted evaluations, newest first.
func (uc *EvaluationUsecase) ListResults(page, pageSize int) ([]dto.EvaluationRecordDTO, *response.Pagination, error) {
	records, pagination, err := uc.evaluationRepo.ListRecords(page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	out := make([]dto.EvaluationRecordDTO, 0, len(records))
	for _, record := range records {
		out = append(out, recordToDTO(record))
	}
	return out, pagination, nil
}

// GetSummary reports statistics over the agent's current ledger.
func (uc *EvaluationUsecase) GetSummary() invest.Summary {
	return uc.agent.Summary()
}

// SimilarStories embeds the story and retrieves the closest historical
// stories with their real hours.
func (uc *EvaluationUsecase) SimilarStories(ctx context.Context, req dto.SimilarStoriesRequest) ([]dto.SimilarStoryDTO, error) {
	if uc.gemini == nil {
		return nil, ErrEmbeddingsUnavailable
	}

	topK := req.TopK
	if topK <= 0 || topK > 20 {
		topK = 5
	}

	embedding, err := uc.gemini.GenerateEmbedding(ctx, req.Historia)
	if err != nil {
		return nil, err
	}

	stories, err := uc.historicalRepo.SearchSimilar(pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SimilarStoryDTO, 0, len(stories))
	for _, story := range stories {
		out = append(out, dto.SimilarStoryDTO{
			Historia:        story.Historia,
			Horas:           story.Horas,
			CriteriosINVEST: story.CriteriosINVEST,
			Complejidad:     story.Complejidad,
			Distance:        story.Distance,
		})
	}
	return out, nil
}

// ImportHistorical loads finished stories with real hours, embedding each so
// the similarity search can use them. Returns how many were stored.
func (uc *EvaluationUsecase) ImportHistorical(ctx context.Context, rows []util.HistoricalRow) (int, error) {
	if uc.gemini == nil {
		return 0, ErrEmbeddingsUnavailable
	}

	stored := 0
	for _, row := range rows {
		embedding, err := uc.gemini.GenerateEmbedding(ctx, row.Historia)
		if err != nil {
			return stored, fmt.Errorf("embedding para historia %q: %w", row.ID, err)
		}

		story := &model.HistoricalStory{
			Historia:        row.Historia,
			Horas:           row.Horas,
			CriteriosINVEST: row.CriteriosINVEST,
			Complejidad:     row.Complejidad,
			Embedding:       pgvector.NewVector(embedding),
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := uc.historicalRepo.CreateStory(story); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func recordFromResult(result invest.Result, batchID *uuid.UUID, sprint, prioridad string) *model.EvaluationRecord {
	scoresJSON, err := json.Marshal(result.CriterionScores)
	if err != nil {
		scoresJSON = []byte("{}")
	}
	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		suggestionsJSON = []byte("[]")
	}

	return &model.EvaluationRecord{
		BatchID:         batchID,
		StoryID:         result.ID,
		Historia:        result.StoryText,
		Sprint:          sprint,
		Prioridad:       prioridad,
		ModeUsed:        string(result.ModeUsed),
		CriterionScores: string(scoresJSON),
		PassedCount:     result.PassedCount(),
		Suggestions:     string(suggestionsJSON),
		EstimatedHours:  result.EstimatedHours,
		EvalError:       result.Error,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func recordToDTO(record model.EvaluationRecord) dto.EvaluationRecordDTO {
	result := invest.Result{
		ID:             record.StoryID,
		StoryText:      record.Historia,
		ModeUsed:       invest.Mode(record.ModeUsed),
		EstimatedHours: record.EstimatedHours,
		Error:          record.EvalError,
	}
	if err := json.Unmarshal([]byte(record.CriterionScores), &result.CriterionScores); err != nil {
		log.Printf("Puntuaciones ilegibles en el registro %s: %v", record.ID, err)
	}
	if err := json.Unmarshal([]byte(record.Suggestions), &result.Suggestions); err != nil {
		log.Printf("Sugerencias ilegibles en el registro %s: %v", record.ID, err)
	}

	return dto.EvaluationRecordDTO{
		ID:        record.ID,
		StoryID:   record.StoryID,
		Result:    result,
		Sprint:    record.Sprint,
		Prioridad: record.Prioridad,
		CreatedAt: record.CreatedAt,
	}
}
