package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fadilmartias/invest-analyzer/internal/dto"
	"github.com/fadilmartias/invest-analyzer/internal/middleware"
	"github.com/fadilmartias/invest-analyzer/internal/usecase"
	"github.com/fadilmartias/invest-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
)

type EvaluateHandler struct {
	uc *usecase.EvaluationUsecase
}

func NewEvaluateHandler(uc *usecase.EvaluationUsecase) *EvaluateHandler {
	return &EvaluateHandler{uc: uc}
}

func (h *EvaluateHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/stories/evaluate", middleware.RateLimiter(10, time.Minute), h.EvaluateStory)
	app.Post("/stories/similar", middleware.RateLimiter(10, time.Minute), h.SimilarStories)
	app.Post("/backlog/evaluate", middleware.RateLimiter(2, time.Minute), h.EvaluateBacklog)
	app.Get("/backlog/:id", h.Batch)
	app.Get("/backlog/:id/export", h.ExportBatch)
	app.Get("/results", h.Results)
	app.Get("/summary", h.Summary)
	app.Post("/historical/import", middleware.RateLimiter(2, time.Minute), h.ImportHistorical)
}

// EvaluateStory evaluates one story synchronously.
func (h *EvaluateHandler) EvaluateStory(c *fiber.Ctx) error {
	var req dto.EvaluateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cuerpo de la petición inválido",
		}, err)
	}

	result := h.uc.EvaluateStory(c.Context(), req)
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Historia evaluada",
		Data:    result,
	})
}

// EvaluateBacklog accepts an Azure DevOps CSV and kicks off an async batch.
func (h *EvaluateHandler) EvaluateBacklog(c *fiber.Ctx) error {
	upload, source, err := h.parseCSVUpload(c, "backlog")
	if err != nil {
		return err
	}

	backlog, err := util.ParseBacklogCSV(upload)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "no se pudo interpretar el backlog",
		}, err)
	}

	id, err := h.uc.SubmitBacklog(backlog, source)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "no se pudo registrar el lote",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Lote en proceso",
		Data:    fiber.Map{"id": id, "status": "processing"},
	})
}

func (h *EvaluateHandler) Batch(c *fiber.Ctx) error {
	batch, err := h.uc.GetBatch(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "lote no encontrado",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Lote recuperado",
		Data:    batch,
	})
}

func (h *EvaluateHandler) ExportBatch(c *fiber.Ctx) error {
	id := c.Params("id")
	csvBytes, err := h.uc.ExportBatch(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "no se pudo exportar el lote",
		}, err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="backlog_%s.csv"`, id))
	return c.Send(csvBytes)
}

func (h *EvaluateHandler) Results(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, pagination, err := h.uc.ListResults(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "no se pudieron listar los resultados",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Resultados recuperados",
		Data:       records,
		Pagination: pagination,
	})
}

func (h *EvaluateHandler) Summary(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Resumen del lote actual",
		Data:    h.uc.GetSummary(),
	})
}

func (h *EvaluateHandler) SimilarStories(c *fiber.Ctx) error {
	var req dto.SimilarStoriesRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cuerpo de la petición inválido",
		}, err)
	}
	if strings.TrimSpace(req.Historia) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "historia vacía",
		})
	}

	stories, err := h.uc.SimilarStories(c.Context(), req)
	if err != nil {
		code := 0
		if errors.Is(err, usecase.ErrEmbeddingsUnavailable) {
			code = fiber.StatusServiceUnavailable
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "no se pudieron buscar historias similares",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Historias similares recuperadas",
		Data:    stories,
	})
}

// ImportHistorical loads the historical dataset CSV used for estimation
// context.
func (h *EvaluateHandler) ImportHistorical(c *fiber.Ctx) error {
	upload, _, err := h.parseCSVUpload(c, "historico")
	if err != nil {
		return err
	}

	historical, err := util.ParseHistoricalCSV(upload)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "no se pudo interpretar el histórico",
		}, err)
	}

	stored, err := h.uc.ImportHistorical(c.Context(), historical)
	if err != nil {
		code := 0
		if errors.Is(err, usecase.ErrEmbeddingsUnavailable) {
			code = fiber.StatusServiceUnavailable
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "no se pudo importar el histórico",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Histórico importado",
		Data:    fiber.Map{"stored": stored},
	})
}

func (h *EvaluateHandler) parseCSVUpload(c *fiber.Ctx, fieldName string) (*bytes.Reader, string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return nil, "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("archivo '%s' requerido", fieldName),
		}, err)
	}
	if file.Size > 5*1024*1024 {
		return nil, "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("archivo '%s' demasiado grande (máx 5MB)", fieldName),
		})
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("no se pudo abrir el archivo '%s'", fieldName),
		}, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("no se pudo leer el archivo '%s'", fieldName),
		}, err)
	}
	return bytes.NewReader(data), file.Filename, nil
}
