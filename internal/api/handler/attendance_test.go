package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/crewforge/checkpoint/internal/api/middleware"
	"github.com/crewforge/checkpoint/internal/attendance"
	"github.com/crewforge/checkpoint/internal/domain"
)

// MockAttendanceProcessor is a mock implementation of AttendanceProcessor
type MockAttendanceProcessor struct {
	mock.Mock
}

func (m *MockAttendanceProcessor) Process(ctx context.Context, req attendance.ScanRequest) (*attendance.ScanResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendance.ScanResult), args.Error(1)
}

func (m *MockAttendanceProcessor) Status(ctx context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerClockStatus), args.Error(1)
}

func (m *MockAttendanceProcessor) Events(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error) {
	args := m.Called(ctx, workerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceEvent), args.Error(1)
}

// MockWorkerDirectory is a mock implementation of WorkerDirectory
type MockWorkerDirectory struct {
	mock.Mock
}

func (m *MockWorkerDirectory) GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Worker), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp builds an app with the error handler and a fake authenticated company
func newTestApp(companyID uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalCompanyID, companyID)
		return c.Next()
	})

	return app
}

func TestAttendanceHandler_Scan(t *testing.T) {
	companyID := uuid.New()
	workerID := uuid.New()

	worker := &domain.Worker{ID: workerID, CompanyID: companyID, Name: "Ana Souza"}

	t.Run("records a scan", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		mockWorkers.On("GetByID", mock.Anything, workerID).Return(worker, nil)

		eventID := uuid.New()
		verificationID := uuid.New()
		mockProcessor.On("Process", mock.Anything, mock.MatchedBy(func(req attendance.ScanRequest) bool {
			return req.WorkerID == workerID && req.CodeHash == hashCode("gate-7-code") && req.VerificationID == verificationID
		})).Return(&attendance.ScanResult{
			Event: &domain.AttendanceEvent{
				ID:        eventID,
				WorkerID:  workerID,
				EventType: domain.EventClockIn,
				EventTime: time.Now().UTC(),
			},
			Status: &domain.WorkerClockStatus{
				WorkerID:    workerID,
				State:       domain.StateClockedIn,
				LastEventID: eventID,
			},
			Summary: "Ana Souza clocked in at Gate 7 (now clocked_in)",
		}, nil)

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Post("/v1/attendance/scans", h.Scan)

		body, _ := json.Marshal(ScanBody{
			WorkerID:       workerID,
			Code:           "gate-7-code",
			VerificationID: verificationID,
		})

		req := httptest.NewRequest("POST", "/v1/attendance/scans", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var result attendance.ScanResult
		_ = json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, domain.StateClockedIn, result.Status.State)
		assert.Contains(t, result.Summary, "clocked in")

		mockProcessor.AssertExpectations(t)
		mockWorkers.AssertExpectations(t)
	})

	t.Run("rejects missing code", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Post("/v1/attendance/scans", h.Scan)

		body, _ := json.Marshal(ScanBody{WorkerID: workerID})
		req := httptest.NewRequest("POST", "/v1/attendance/scans", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		mockProcessor.AssertNotCalled(t, "Process")
	})

	t.Run("rejects missing verification id", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Post("/v1/attendance/scans", h.Scan)

		body, _ := json.Marshal(ScanBody{WorkerID: workerID, Code: "gate-7-code"})
		req := httptest.NewRequest("POST", "/v1/attendance/scans", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		mockProcessor.AssertNotCalled(t, "Process")
	})

	t.Run("hides workers of other companies", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		foreignWorker := &domain.Worker{ID: workerID, CompanyID: uuid.New(), Name: "Other"}
		mockWorkers.On("GetByID", mock.Anything, workerID).Return(foreignWorker, nil)

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Post("/v1/attendance/scans", h.Scan)

		body, _ := json.Marshal(ScanBody{WorkerID: workerID, Code: "gate-7-code", VerificationID: uuid.New()})
		req := httptest.NewRequest("POST", "/v1/attendance/scans", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		mockProcessor.AssertNotCalled(t, "Process")
	})

	t.Run("propagates verification required", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		mockWorkers.On("GetByID", mock.Anything, workerID).Return(worker, nil)
		mockProcessor.On("Process", mock.Anything, mock.Anything).Return(nil, domain.ErrVerificationRequired)

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Post("/v1/attendance/scans", h.Scan)

		body, _ := json.Marshal(ScanBody{WorkerID: workerID, Code: "gate-7-code", VerificationID: uuid.New()})
		req := httptest.NewRequest("POST", "/v1/attendance/scans", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, domain.ErrVerificationRequired.StatusCode, resp.StatusCode)
	})
}

func TestAttendanceHandler_Status(t *testing.T) {
	companyID := uuid.New()
	workerID := uuid.New()
	worker := &domain.Worker{ID: workerID, CompanyID: companyID, Name: "Ana Souza"}

	t.Run("returns current status", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		mockWorkers.On("GetByID", mock.Anything, workerID).Return(worker, nil)
		mockProcessor.On("Status", mock.Anything, workerID).Return(&domain.WorkerClockStatus{
			WorkerID: workerID,
			State:    domain.StateOnBreak,
		}, nil)

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Get("/v1/attendance/status/:worker_id", h.Status)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/attendance/status/"+workerID.String(), nil))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var status domain.WorkerClockStatus
		_ = json.NewDecoder(resp.Body).Decode(&status)
		assert.Equal(t, domain.StateOnBreak, status.State)
	})

	t.Run("rejects malformed worker id", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Get("/v1/attendance/status/:worker_id", h.Status)

		resp, _ := app.Test(httptest.NewRequest("GET", "/v1/attendance/status/not-a-uuid", nil))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAttendanceHandler_Events(t *testing.T) {
	companyID := uuid.New()
	workerID := uuid.New()
	worker := &domain.Worker{ID: workerID, CompanyID: companyID, Name: "Ana Souza"}

	t.Run("lists events with explicit limit", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		mockWorkers.On("GetByID", mock.Anything, workerID).Return(worker, nil)
		mockProcessor.On("Events", mock.Anything, workerID, 10).Return([]domain.AttendanceEvent{
			{ID: uuid.New(), WorkerID: workerID, EventType: domain.EventClockOut},
			{ID: uuid.New(), WorkerID: workerID, EventType: domain.EventClockIn},
		}, nil)

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Get("/v1/attendance/events/:worker_id", h.Events)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/attendance/events/"+workerID.String()+"?limit=10", nil))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body EventsResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, 2, body.Count)
		assert.Len(t, body.Events, 2)
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		mockProcessor := &MockAttendanceProcessor{}
		mockWorkers := &MockWorkerDirectory{}

		mockWorkers.On("GetByID", mock.Anything, workerID).Return(worker, nil)

		h := NewAttendanceHandler(mockProcessor, mockWorkers, nil)
		app := newTestApp(companyID)
		app.Get("/v1/attendance/events/:worker_id", h.Events)

		resp, _ := app.Test(httptest.NewRequest("GET", "/v1/attendance/events/"+workerID.String()+"?limit=-1", nil))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		mockProcessor.AssertNotCalled(t, "Events")
	})
}

func TestHashCode(t *testing.T) {
	// Deterministic and 64 hex chars
	assert.Equal(t, hashCode("abc"), hashCode("abc"))
	assert.Len(t, hashCode("abc"), 64)
	assert.NotEqual(t, hashCode("abc"), hashCode("abd"))
}
