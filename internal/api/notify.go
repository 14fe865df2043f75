package api

import (
	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/api/handler"
	"github.com/crewforge/checkpoint/internal/domain"
)

// verificationFanout forwards one verification outcome to several sinks,
// typically the websocket hub and the webhook dispatcher.
type verificationFanout []handler.VerificationNotifier

func (f verificationFanout) VerificationCompleted(companyID uuid.UUID, result *domain.VerificationResult) {
	for _, n := range f {
		n.VerificationCompleted(companyID, result)
	}
}

type attendanceFanout []handler.AttendanceNotifier

func (f attendanceFanout) AttendanceRecorded(companyID uuid.UUID, event *domain.AttendanceEvent, status *domain.WorkerClockStatus) {
	for _, n := range f {
		n.AttendanceRecorded(companyID, event, status)
	}
}
