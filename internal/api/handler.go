// Package api exposes the statement import pipeline over HTTP.
package api

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-importer/internal/logger"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/pipeline"
)

// ImportResponse is the JSON envelope for /api/import. It wraps the
// pipeline's ParseResult with a per-upload ID for log correlation.
type ImportResponse struct {
	ImportID string `json:"importId,omitempty"`
	*models.ParseResult
}

// Handler holds the HTTP handlers for the importer API.
type Handler struct {
	Importer *pipeline.Importer
	Log      zerolog.Logger
}

// Register sets up the API routes on the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/import", h.HandleImport)
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// HandleImport accepts a multipart upload (field "file") and runs it
// through the pipeline. The HTTP status mirrors the result: 200 for a
// successful parse (warnings included), 422 when the pipeline rejected or
// could not classify the file, 400 for malformed requests.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	importID := uuid.NewString()
	log := h.Log.With().Str("importId", importID).Logger()

	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ImportResponse{
			ImportID:    importID,
			ParseResult: models.Failed("no file uploaded; use multipart form field 'file'"),
		})
	}

	f, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ImportResponse{
			ImportID:    importID,
			ParseResult: models.Failed("could not open uploaded file"),
		})
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ImportResponse{
			ImportID:    importID,
			ParseResult: models.Failed("could not read uploaded file"),
		})
	}

	file := &models.RawFile{
		Name:      header.Filename,
		Size:      header.Size,
		Content:   content,
		MediaType: header.Header.Get("Content-Type"),
	}

	ctx := logger.WithContext(c.UserContext(), log)
	result := h.Importer.ImportStatement(ctx, file)

	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(ImportResponse{ImportID: importID, ParseResult: result})
}
