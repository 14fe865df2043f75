package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/domain"
	"github.com/crewforge/checkpoint/internal/enrollment"
)

// EnrollmentService interface for the enrollment service
type EnrollmentService interface {
	Enroll(ctx context.Context, req enrollment.Request) (*domain.EnrollmentSession, error)
}

// WorkerDirectory resolves workers for company-scope checks
type WorkerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error)
}

// EnrollmentHandler handles enrollment requests
type EnrollmentHandler struct {
	service EnrollmentService
	workers WorkerDirectory
}

// NewEnrollmentHandler creates a new EnrollmentHandler instance
func NewEnrollmentHandler(service EnrollmentService, workers WorkerDirectory) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		workers: workers,
	}
}

// Enroll POST /v1/enrollments - run one enrollment session
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	var req enrollment.Request
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if req.WorkerID == uuid.Nil {
		return domain.ErrValidationFailed.WithError(errors.New("worker_id is required"))
	}

	if _, err := requireCompanyWorker(c.Context(), h.workers, companyID, req.WorkerID); err != nil {
		return err
	}

	session, err := h.service.Enroll(c.Context(), req)
	if err != nil {
		// A halted session still carries the step where it stopped; return it
		// with the error's status so callers see both.
		if session == nil {
			return err
		}

		status := fiber.StatusUnprocessableEntity
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			status = appErr.StatusCode
		}
		return c.Status(status).JSON(session)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// requireCompanyWorker resolves a worker and hides workers of other companies
// behind the same not-found error as missing ones.
func requireCompanyWorker(ctx context.Context, workers WorkerDirectory, companyID, workerID uuid.UUID) (*domain.Worker, error) {
	worker, err := workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker.CompanyID != companyID {
		return nil, domain.ErrWorkerNotFound
	}
	return worker, nil
}
