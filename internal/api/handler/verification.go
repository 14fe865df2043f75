package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/domain"
	"github.com/crewforge/checkpoint/internal/verification"
)

// VerificationService interface for the verification service
type VerificationService interface {
	Verify(ctx context.Context, req verification.Request) (*domain.VerificationResult, error)
}

// VerificationNotifier publishes verification outcomes to connected observers
type VerificationNotifier interface {
	VerificationCompleted(companyID uuid.UUID, result *domain.VerificationResult)
}

// VerificationHandler handles verification requests
type VerificationHandler struct {
	service  VerificationService
	workers  WorkerDirectory
	notifier VerificationNotifier
}

// NewVerificationHandler creates a new VerificationHandler instance
func NewVerificationHandler(service VerificationService, workers WorkerDirectory, notifier VerificationNotifier) *VerificationHandler {
	return &VerificationHandler{
		service:  service,
		workers:  workers,
		notifier: notifier,
	}
}

// Verify POST /v1/verifications - run one verification attempt
//
// A 200 response means verification ran; the verified field says whether it
// passed. Missing enrollment, capture failures and unsupported devices are
// errors, not negative results.
func (h *VerificationHandler) Verify(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	var req verification.Request
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if req.WorkerID == uuid.Nil {
		return domain.ErrValidationFailed.WithError(errors.New("worker_id is required"))
	}

	if _, err := requireCompanyWorker(c.Context(), h.workers, companyID, req.WorkerID); err != nil {
		return err
	}

	result, err := h.service.Verify(c.Context(), req)
	if err != nil {
		return err
	}

	if h.notifier != nil {
		h.notifier.VerificationCompleted(companyID, result)
	}

	return c.JSON(result)
}
