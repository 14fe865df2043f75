package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventEnrollmentStep      EventType = "enrollment.step"
	EventEnrollmentCompleted EventType = "enrollment.completed"
	EventVerification        EventType = "verification.completed"
	EventAttendanceRecorded  EventType = "attendance.recorded"
)

type Event struct {
	CompanyID uuid.UUID   `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
