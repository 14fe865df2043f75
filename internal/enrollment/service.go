// Package enrollment runs the enrollment protocol: an ordered step machine
// (device check, capture, storage, self test) executed by one of two
// strategies, device-bound credentials or cross-device biometric templates.
// Sessions are transient; observers follow them through progress events and
// the final snapshot.
package enrollment

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/device"
	"github.com/crewforge/checkpoint/internal/domain"
)

type TemplateStoreInterface interface {
	Save(ctx context.Context, t *domain.BiometricTemplate) error
}

type CredentialStoreInterface interface {
	Create(ctx context.Context, c *domain.DeviceCredential) error
}

type WorkerDirectoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error)
}

// NotifierInterface streams step transitions to observers. Notifications are
// fire-and-forget; a slow or absent observer never affects the session.
type NotifierInterface interface {
	EnrollmentStep(companyID uuid.UUID, session *domain.EnrollmentSession, step domain.StepName)
	EnrollmentCompleted(companyID uuid.UUID, session *domain.EnrollmentSession)
}

// Request carries everything one enrollment attempt needs.
type Request struct {
	WorkerID       uuid.UUID             `json:"worker_id"`
	Type           domain.BiometricType  `json:"type"`
	Mode           domain.EnrollmentMode `json:"mode"`
	Frame          []byte                `json:"frame,omitempty"`
	DeviceID       string                `json:"device_id,omitempty"`
	DevicePlatform string                `json:"device_platform,omitempty"`
}

type Service struct {
	templates     TemplateStoreInterface
	credentials   CredentialStoreInterface
	workers       WorkerDirectoryInterface
	provider      capture.Provider
	authenticator device.Authenticator
	notifier      NotifierInterface
}

func NewService(
	templates TemplateStoreInterface,
	credentials CredentialStoreInterface,
	workers WorkerDirectoryInterface,
	provider capture.Provider,
	authenticator device.Authenticator,
	notifier NotifierInterface,
) *Service {
	return &Service{
		templates:     templates,
		credentials:   credentials,
		workers:       workers,
		provider:      provider,
		authenticator: authenticator,
		notifier:      notifier,
	}
}

// Enroll runs the full step machine for one worker. Steps execute in strict
// order and a failed step halts the session; the partial session is returned
// alongside the error so callers can show exactly where it stopped.
//
// Concurrent sessions for the same worker are allowed to race. The store's
// uniqueness constraints arbitrate; losing a race surfaces as a storage-step
// failure.
func (s *Service) Enroll(ctx context.Context, req Request) (*domain.EnrollmentSession, error) {
	if !req.Mode.Valid() {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("unknown enrollment mode %q", req.Mode))
	}
	if req.Mode == domain.ModeCrossDevice && !req.Type.Valid() {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("unknown biometric type %q", req.Type))
	}

	worker, err := s.workers.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}

	session := domain.NewEnrollmentSession(req.WorkerID, req.Type, req.Mode)

	// device check
	if err := s.runStep(worker, session, domain.StepDeviceCheck, func() error {
		return s.deviceCheck(ctx, req)
	}); err != nil {
		return session, err
	}

	// capture
	var sample *capture.Sample
	var created *device.CreatedCredential
	if err := s.runStep(worker, session, domain.StepCapture, func() error {
		var err error
		if req.Mode == domain.ModeDeviceBound {
			created, err = s.createCredential(ctx)
		} else {
			sample, err = s.captureSample(ctx, req)
		}
		return err
	}); err != nil {
		return session, err
	}

	// storage
	if err := s.runStep(worker, session, domain.StepStorage, func() error {
		if req.Mode == domain.ModeDeviceBound {
			return s.storeCredential(ctx, req, worker, session, created)
		}
		return s.storeTemplate(ctx, req, worker, session, sample)
	}); err != nil {
		return session, err
	}

	// self test
	s.selfTest(ctx, worker, session, created)

	session.Succeeded = true
	session.FinishedAt = time.Now().UTC()
	if s.notifier != nil {
		s.notifier.EnrollmentCompleted(worker.CompanyID, session)
	}

	return session, nil
}

// runStep drives one step through in_progress and its terminal status,
// emitting a progress event on each transition.
func (s *Service) runStep(worker *domain.Worker, session *domain.EnrollmentSession, name domain.StepName, fn func() error) error {
	session.SetStep(name, domain.StepInProgress, "")
	s.notifyStep(worker, session, name)

	if err := fn(); err != nil {
		session.SetStep(name, domain.StepFailed, err.Error())
		session.FinishedAt = time.Now().UTC()
		s.notifyStep(worker, session, name)
		if s.notifier != nil {
			s.notifier.EnrollmentCompleted(worker.CompanyID, session)
		}
		return err
	}

	session.SetStep(name, domain.StepCompleted, "")
	s.notifyStep(worker, session, name)
	return nil
}

func (s *Service) notifyStep(worker *domain.Worker, session *domain.EnrollmentSession, name domain.StepName) {
	if s.notifier != nil {
		s.notifier.EnrollmentStep(worker.CompanyID, session, name)
	}
}

func (s *Service) deviceCheck(ctx context.Context, req Request) error {
	if req.Mode == domain.ModeDeviceBound {
		available, err := s.authenticator.Available(ctx)
		if err != nil {
			return domain.ErrDeviceUnsupported.WithError(err)
		}
		if !available {
			return domain.ErrDeviceUnsupported
		}
		return nil
	}

	caps, err := s.provider.Capabilities(ctx)
	if err != nil {
		return domain.ErrDeviceUnsupported.WithError(err)
	}
	if !caps.Supports(req.Type) {
		return domain.ErrDeviceUnsupported.WithError(fmt.Errorf("device cannot capture %s", req.Type))
	}
	return nil
}

func (s *Service) captureSample(ctx context.Context, req Request) (*capture.Sample, error) {
	sample, err := s.provider.CaptureSample(ctx, capture.Request{
		Type:     req.Type,
		Frame:    req.Frame,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		return nil, domain.ErrCaptureFailed.WithError(err)
	}
	return sample, nil
}

func (s *Service) createCredential(ctx context.Context) (*device.CreatedCredential, error) {
	challenge, err := newChallenge()
	if err != nil {
		return nil, domain.ErrEnrollmentFailed.WithError(err)
	}

	created, err := s.authenticator.CreateCredential(ctx, challenge)
	if err != nil {
		return nil, domain.ErrEnrollmentFailed.WithError(err)
	}
	return created, nil
}

// storeTemplate persists the captured sample. A transient storage failure is
// retried exactly once without re-capturing; business errors (validation,
// uniqueness) are not retried.
func (s *Service) storeTemplate(ctx context.Context, req Request, worker *domain.Worker, session *domain.EnrollmentSession, sample *capture.Sample) error {
	template := &domain.BiometricTemplate{
		WorkerID:    worker.ID,
		CompanyID:   worker.CompanyID,
		Type:        sample.Type,
		Payload:     sample.Payload,
		Vector:      sample.Vector,
		Quality:     sample.Quality,
		DeviceID:    firstNonEmpty(sample.DeviceID, req.DeviceID),
		AlgorithmID: sample.AlgorithmID,
		CapturedAt:  time.Now().UTC(),
	}

	err := s.templates.Save(ctx, template)
	if err != nil && retryable(err) {
		err = s.templates.Save(ctx, template)
	}
	if err != nil {
		return err
	}

	session.TemplateID = &template.ID
	return nil
}

func (s *Service) storeCredential(ctx context.Context, req Request, worker *domain.Worker, session *domain.EnrollmentSession, created *device.CreatedCredential) error {
	credential := &domain.DeviceCredential{
		CredentialID:   created.CredentialID,
		WorkerID:       worker.ID,
		PublicKey:      created.PublicKey,
		DevicePlatform: firstNonEmpty(created.Platform, req.DevicePlatform),
	}

	err := s.credentials.Create(ctx, credential)
	if err != nil && retryable(err) {
		err = s.credentials.Create(ctx, credential)
	}
	if err != nil {
		return err
	}

	session.CredentialID = credential.CredentialID
	return nil
}

// selfTest exercises the freshly stored artifact. It never fails the session:
// cross-device enrollments skip it (no second capture to compare against) and
// a device-bound assertion failure is downgraded to a warning.
func (s *Service) selfTest(ctx context.Context, worker *domain.Worker, session *domain.EnrollmentSession, created *device.CreatedCredential) {
	if session.Mode == domain.ModeCrossDevice {
		session.SetStep(domain.StepSelfTest, domain.StepSkipped, "")
		s.notifyStep(worker, session, domain.StepSelfTest)
		return
	}

	session.SetStep(domain.StepSelfTest, domain.StepInProgress, "")
	s.notifyStep(worker, session, domain.StepSelfTest)

	if err := s.assertCredential(ctx, created); err != nil {
		session.SetStep(domain.StepSelfTest, domain.StepFailed, err.Error())
		session.Warning = fmt.Sprintf("self test failed: %v", err)
	} else {
		session.SetStep(domain.StepSelfTest, domain.StepCompleted, "")
	}
	s.notifyStep(worker, session, domain.StepSelfTest)
}

func (s *Service) assertCredential(ctx context.Context, created *device.CreatedCredential) error {
	challenge, err := newChallenge()
	if err != nil {
		return err
	}

	assertion, err := s.authenticator.Assert(ctx, challenge, []string{created.CredentialID})
	if err != nil {
		return err
	}

	return s.authenticator.VerifySignature(assertion, challenge, created.PublicKey)
}

func newChallenge() (device.Challenge, error) {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return nil, fmt.Errorf("generate challenge: %w", err)
	}
	return challenge, nil
}

// retryable reports whether a storage error is worth one immediate retry.
// Domain errors (validation, duplicates) will fail identically again.
func retryable(err error) bool {
	var appErr *domain.AppError
	return !errors.As(err, &appErr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
