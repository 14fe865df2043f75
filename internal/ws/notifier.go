package ws

import (
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/domain"
)

// EnrollmentStep publishes one step transition of a running session.
func (h *Hub) EnrollmentStep(companyID uuid.UUID, session *domain.EnrollmentSession, step domain.StepName) {
	h.BroadcastToCompany(companyID, EventEnrollmentStep, map[string]interface{}{
		"session_id": session.ID,
		"worker_id":  session.WorkerID,
		"step":       step,
		"steps":      session.Steps,
	})
}

// EnrollmentCompleted publishes the final snapshot of a finished session.
func (h *Hub) EnrollmentCompleted(companyID uuid.UUID, session *domain.EnrollmentSession) {
	h.BroadcastToCompany(companyID, EventEnrollmentCompleted, session)
}

// VerificationCompleted publishes one verification outcome, passed or not.
func (h *Hub) VerificationCompleted(companyID uuid.UUID, result *domain.VerificationResult) {
	h.BroadcastToCompany(companyID, EventVerification, result)
}

// AttendanceRecorded publishes a recorded scan and the resulting clock status.
func (h *Hub) AttendanceRecorded(companyID uuid.UUID, event *domain.AttendanceEvent, status *domain.WorkerClockStatus) {
	h.BroadcastToCompany(companyID, EventAttendanceRecorded, map[string]interface{}{
		"event":  event,
		"status": status,
	})
}
