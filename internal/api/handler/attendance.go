package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/attendance"
	"github.com/crewforge/checkpoint/internal/domain"
)

// AttendanceProcessor interface for the attendance processor
type AttendanceProcessor interface {
	Process(ctx context.Context, req attendance.ScanRequest) (*attendance.ScanResult, error)
	Status(ctx context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error)
	Events(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error)
}

// AttendanceNotifier publishes recorded scans to connected observers
type AttendanceNotifier interface {
	AttendanceRecorded(companyID uuid.UUID, event *domain.AttendanceEvent, status *domain.WorkerClockStatus)
}

// AttendanceHandler handles attendance scan and query requests
type AttendanceHandler struct {
	processor AttendanceProcessor
	workers   WorkerDirectory
	notifier  AttendanceNotifier
}

// NewAttendanceHandler creates a new AttendanceHandler instance
func NewAttendanceHandler(processor AttendanceProcessor, workers WorkerDirectory, notifier AttendanceNotifier) *AttendanceHandler {
	return &AttendanceHandler{
		processor: processor,
		workers:   workers,
		notifier:  notifier,
	}
}

// ScanBody is the request body for the scan endpoint. The device sends the raw
// scanned code; only its hash ever reaches storage. VerificationID references
// a verification returned by POST /v1/verifications; the outcome is looked up
// server side, never taken from the body.
type ScanBody struct {
	WorkerID       uuid.UUID           `json:"worker_id"`
	Code           string              `json:"code"`
	VerificationID uuid.UUID           `json:"verification_id"`
	DeviceInfo     string              `json:"device_info,omitempty"`
	Geo            *domain.Geolocation `json:"geolocation,omitempty"`
	Notes          string              `json:"notes,omitempty"`
}

// Scan POST /v1/attendance/scans - record one verified QR scan
func (h *AttendanceHandler) Scan(c *fiber.Ctx) error {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		return err
	}

	var body ScanBody
	if err := c.BodyParser(&body); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if body.WorkerID == uuid.Nil {
		return domain.ErrValidationFailed.WithError(errors.New("worker_id is required"))
	}
	code := strings.TrimSpace(body.Code)
	if code == "" {
		return domain.ErrValidationFailed.WithError(errors.New("code is required"))
	}
	if body.VerificationID == uuid.Nil {
		return domain.ErrValidationFailed.WithError(errors.New("verification_id is required"))
	}

	if _, err := requireCompanyWorker(c.Context(), h.workers, companyID, body.WorkerID); err != nil {
		return err
	}

	result, err := h.processor.Process(c.Context(), attendance.ScanRequest{
		WorkerID:       body.WorkerID,
		CodeHash:       hashCode(code),
		VerificationID: body.VerificationID,
		DeviceInfo:     body.DeviceInfo,
		Geo:            body.Geo,
		Notes:          body.Notes,
	})
	if err != nil {
		return err
	}

	if h.notifier != nil {
		h.notifier.AttendanceRecorded(companyID, result.Event, result.Status)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Status GET /v1/attendance/status/:worker_id - current clock status
func (h *AttendanceHandler) Status(c *fiber.Ctx) error {
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

	status, err := h.processor.Status(c.Context(), workerID)
	if err != nil {
		return err
	}

	return c.JSON(status)
}

// EventsResponse response for the events endpoint
type EventsResponse struct {
	Events []domain.AttendanceEvent `json:"events"`
	Count  int                      `json:"count"`
}

// Events GET /v1/attendance/events/:worker_id - recent events, newest first
func (h *AttendanceHandler) Events(c *fiber.Ctx) error {
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

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return domain.ErrValidationFailed.WithError(errors.New("limit must be a non-negative integer"))
		}
	}

	events, err := h.processor.Events(c.Context(), workerID, limit)
	if err != nil {
		return err
	}

	return c.JSON(EventsResponse{
		Events: events,
		Count:  len(events),
	})
}

// parseWorkerID extracts the worker_id path parameter
func parseWorkerID(c *fiber.Ctx) (uuid.UUID, error) {
	workerID, err := uuid.Parse(c.Params("worker_id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(errors.New("worker_id must be a valid UUID"))
	}
	return workerID, nil
}

// hashCode generates SHA-256 hash of a scanned code
func hashCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}
