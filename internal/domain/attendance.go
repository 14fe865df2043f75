package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClockState is a worker's current attendance phase.
type ClockState string

const (
	StateClockedOut ClockState = "clocked_out"
	StateClockedIn  ClockState = "clocked_in"
	StateOnBreak    ClockState = "on_break"
)

// EventType is the direction of one attendance transition.
type EventType string

const (
	EventClockIn    EventType = "clock_in"
	EventClockOut   EventType = "clock_out"
	EventBreakStart EventType = "break_start"
	EventBreakEnd   EventType = "break_end"
)

// ScanIntent is what a scanned code asks for. A location's QR may be dedicated
// to one event type, or generic IntentAuto which lets the current state decide.
type ScanIntent string

const (
	IntentAuto       ScanIntent = "auto"
	IntentClockIn    ScanIntent = "clock_in"
	IntentClockOut   ScanIntent = "clock_out"
	IntentBreakStart ScanIntent = "break_start"
	IntentBreakEnd   ScanIntent = "break_end"
)

func (i ScanIntent) Valid() bool {
	switch i {
	case IntentAuto, IntentClockIn, IntentClockOut, IntentBreakStart, IntentBreakEnd:
		return true
	}
	return false
}

// NextTransition is the per-worker attendance state machine. It is total: every
// (state, intent) pair yields exactly one event and next state.
//
//	clocked_out + any scan          -> clock_in    (clocked_in)
//	clocked_in  + break_start scan  -> break_start (on_break)
//	clocked_in  + any other scan    -> clock_out   (clocked_out)
//	on_break    + any scan          -> break_end   (clocked_in)
//
// Unknown states are treated as clocked_out, keeping the function total.
func NextTransition(state ClockState, intent ScanIntent) (EventType, ClockState) {
	switch state {
	case StateClockedIn:
		if intent == IntentBreakStart {
			return EventBreakStart, StateOnBreak
		}
		return EventClockOut, StateClockedOut
	case StateOnBreak:
		return EventBreakEnd, StateClockedIn
	default:
		return EventClockIn, StateClockedIn
	}
}

// ResultingState maps an event type to the state it leaves the worker in.
func (e EventType) ResultingState() ClockState {
	switch e {
	case EventClockIn, EventBreakEnd:
		return StateClockedIn
	case EventBreakStart:
		return StateOnBreak
	default:
		return StateClockedOut
	}
}

// Geolocation is an optional device-reported position attached to an event.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// AttendanceEvent is one immutable, append-only attendance record.
type AttendanceEvent struct {
	ID         uuid.UUID    `json:"id"`
	WorkerID   uuid.UUID    `json:"worker_id"`
	ProjectID  uuid.UUID    `json:"project_id"`
	LocationID uuid.UUID    `json:"location_id"`
	EventType  EventType    `json:"event_type"`
	EventTime  time.Time    `json:"event_time"`
	DeviceInfo string       `json:"device_info,omitempty"`
	Geo        *Geolocation `json:"geolocation,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// WorkerClockStatus caches the worker's latest attendance event. It is a
// materialized view: the event log is the source of truth and the status can
// be re-derived from the latest event at any time.
type WorkerClockStatus struct {
	WorkerID      uuid.UUID  `json:"worker_id"`
	State         ClockState `json:"state"`
	LastEventID   uuid.UUID  `json:"last_event_id"`
	LastEventType EventType  `json:"last_event_type"`
	LastEventTime time.Time  `json:"last_event_time"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StatusFromEvent rebuilds the clock-status cache row from an event.
func StatusFromEvent(ev *AttendanceEvent) *WorkerClockStatus {
	return &WorkerClockStatus{
		WorkerID:      ev.WorkerID,
		State:         ev.EventType.ResultingState(),
		LastEventID:   ev.ID,
		LastEventType: ev.EventType,
		LastEventTime: ev.EventTime,
	}
}

// LocationCode is a scannable QR token resolved to a location, project and
// company. Inactive or expired codes must be rejected before any worker state
// is touched.
type LocationCode struct {
	ID         uuid.UUID  `json:"id"`
	CodeHash   string     `json:"-"`
	LocationID uuid.UUID  `json:"location_id"`
	ProjectID  uuid.UUID  `json:"project_id"`
	CompanyID  uuid.UUID  `json:"-"`
	Name       string     `json:"name"`
	Intent     ScanIntent `json:"intent"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Usable reports whether the code may still be scanned at the given instant.
func (c *LocationCode) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}
