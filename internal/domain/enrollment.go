package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentMode selects which of the two enrollment strategies runs.
type EnrollmentMode string

const (
	// ModeDeviceBound enrolls a non-exportable key pair created on the device.
	ModeDeviceBound EnrollmentMode = "device_bound"
	// ModeCrossDevice enrolls a biometric template usable from any device.
	ModeCrossDevice EnrollmentMode = "cross_device"
)

func (m EnrollmentMode) Valid() bool {
	return m == ModeDeviceBound || m == ModeCrossDevice
}

// StepName identifies one phase of the enrollment protocol. Steps always run
// in declaration order; a failed step halts the session.
type StepName string

const (
	StepDeviceCheck StepName = "device_check"
	StepCapture     StepName = "capture"
	StepStorage     StepName = "storage"
	StepSelfTest    StepName = "self_test"
)

type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// EnrollmentStep is one entry in a session's ordered step list.
type EnrollmentStep struct {
	Name   StepName   `json:"name"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// EnrollmentSession is the transient record of one enrollment attempt. It is
// never persisted; callers observe it through progress events and the final
// snapshot.
type EnrollmentSession struct {
	ID         uuid.UUID        `json:"id"`
	WorkerID   uuid.UUID        `json:"worker_id"`
	Type       BiometricType    `json:"type"`
	Mode       EnrollmentMode   `json:"mode"`
	Steps      []EnrollmentStep `json:"steps"`
	Succeeded  bool             `json:"succeeded"`
	Warning    string           `json:"warning,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at,omitempty"`

	// TemplateID / CredentialID reference the artifact a successful session
	// stored, depending on mode.
	TemplateID   *uuid.UUID `json:"template_id,omitempty"`
	CredentialID string     `json:"credential_id,omitempty"`
}

// NewEnrollmentSession builds a session with all protocol steps pending.
func NewEnrollmentSession(workerID uuid.UUID, bioType BiometricType, mode EnrollmentMode) *EnrollmentSession {
	return &EnrollmentSession{
		ID:       uuid.New(),
		WorkerID: workerID,
		Type:     bioType,
		Mode:     mode,
		Steps: []EnrollmentStep{
			{Name: StepDeviceCheck, Status: StepPending},
			{Name: StepCapture, Status: StepPending},
			{Name: StepStorage, Status: StepPending},
			{Name: StepSelfTest, Status: StepPending},
		},
		StartedAt: time.Now().UTC(),
	}
}

// Step returns a pointer to the named step, or nil if absent.
func (s *EnrollmentSession) Step(name StepName) *EnrollmentStep {
	for i := range s.Steps {
		if s.Steps[i].Name == name {
			return &s.Steps[i]
		}
	}
	return nil
}

// SetStep transitions the named step. Error text is kept on the step so the
// UI can show exactly where and why a session halted.
func (s *EnrollmentSession) SetStep(name StepName, status StepStatus, errText string) {
	if step := s.Step(name); step != nil {
		step.Status = status
		step.Error = errText
	}
}
