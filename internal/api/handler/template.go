package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/domain"
)

// TemplateStore interface for template listing and deactivation
type TemplateStore interface {
	List(ctx context.Context, workerID uuid.UUID, bioType domain.BiometricType, activeOnly bool) ([]domain.BiometricTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BiometricTemplate, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// TemplateHandler handles biometric template requests
type TemplateHandler struct {
	templates TemplateStore
	workers   WorkerDirectory
}

// NewTemplateHandler creates a new TemplateHandler instance
func NewTemplateHandler(templates TemplateStore, workers WorkerDirectory) *TemplateHandler {
	return &TemplateHandler{
		templates: templates,
		workers:   workers,
	}
}

// TemplatesResponse response for the list endpoint
type TemplatesResponse struct {
	Templates []domain.BiometricTemplate `json:"templates"`
	Count     int                        `json:"count"`
}

// List GET /v1/templates/:worker_id - a worker's templates, newest first
func (h *TemplateHandler) List(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	workerID, err := parseWorkerID(c)
	if err != nil {
		return err
	}

	if _, err := requireCompanyWorker(c.Context(), h.workers, companyID, workerID); err != nil {
		return err
	}

	bioType := domain.BiometricType(c.Query("type"))
	if bioType != "" && !bioType.Valid() {
		return domain.ErrValidationFailed.WithError(errors.New("type must be fingerprint or face"))
	}

	activeOnly := !c.QueryBool("include_inactive", false)

	templates, err := h.templates.List(c.Context(), workerID, bioType, activeOnly)
	if err != nil {
		return err
	}

	return c.JSON(TemplatesResponse{
		Templates: templates,
		Count:     len(templates),
	})
}

// Deactivate DELETE /v1/templates/:id - deactivate a template
func (h *TemplateHandler) Deactivate(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("id must be a valid UUID"))
	}

	// Templates of other companies are indistinguishable from missing ones.
	template, err := h.templates.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	if template.CompanyID != companyID {
		return domain.ErrTemplateNotFound
	}

	if err := h.templates.Deactivate(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
