// Package verification runs the two identity verification paths: device-bound
// credential assertion and cross-device biometric matching. Outcomes stay
// distinct by design: a worker with no enrollment, a sample that fails to
// capture, a device that cannot run the check and a run that simply does not
// match are four different answers.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/device"
	"github.com/crewforge/checkpoint/internal/domain"
	"github.com/crewforge/checkpoint/internal/matching"
)

type TemplateStoreInterface interface {
	List(ctx context.Context, workerID uuid.UUID, bioType domain.BiometricType, activeOnly bool) ([]domain.BiometricTemplate, error)
}

type CredentialStoreInterface interface {
	ListActiveByWorker(ctx context.Context, workerID uuid.UUID) ([]domain.DeviceCredential, error)
}

type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.VerificationResult) error
}

type WorkerDirectoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error)
}

// Request selects a worker, a path and, for the cross-device path, the
// biometric type to capture and match.
type Request struct {
	WorkerID uuid.UUID                 `json:"worker_id"`
	Method   domain.VerificationMethod `json:"method"`
	Type     domain.BiometricType      `json:"type,omitempty"`
	Frame    []byte                    `json:"frame,omitempty"`
	DeviceID string                    `json:"device_id,omitempty"`
}

type Service struct {
	templates     TemplateStoreInterface
	credentials   CredentialStoreInterface
	verifications VerificationRepositoryInterface
	workers       WorkerDirectoryInterface
	provider      capture.Provider
	authenticator device.Authenticator
	engine        *matching.Engine
}

func NewService(
	templates TemplateStoreInterface,
	credentials CredentialStoreInterface,
	verifications VerificationRepositoryInterface,
	workers WorkerDirectoryInterface,
	provider capture.Provider,
	authenticator device.Authenticator,
	engine *matching.Engine,
) *Service {
	return &Service{
		templates:     templates,
		credentials:   credentials,
		verifications: verifications,
		workers:       workers,
		provider:      provider,
		authenticator: authenticator,
		engine:        engine,
	}
}

// Verify runs one verification attempt. A result is returned whenever
// verification actually ran, verified or not; missing enrollment, capture
// failures and unsupported devices surface as errors instead so callers never
// mistake a first-time user for a failed match.
func (s *Service) Verify(ctx context.Context, req Request) (*domain.VerificationResult, error) {
	if !req.Method.Valid() {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("unknown verification method %q", req.Method))
	}

	worker, err := s.workers.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}

	var result *domain.VerificationResult
	if req.Method == domain.MethodDeviceBound {
		result, err = s.verifyDeviceBound(ctx, worker)
	} else {
		result, err = s.verifyCrossDevice(ctx, worker, req)
	}
	if err != nil {
		return nil, err
	}

	// The attendance scan gate reads this row back by id, so the write has
	// to land before the id is handed to the client.
	if err := s.verifications.Create(ctx, result); err != nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("record verification: %w", err))
	}

	return result, nil
}

// verifyDeviceBound challenges the worker's active credentials, most recently
// created first, and checks the device's assertion against the stored public
// key. Signature validation semantics belong to the authenticator.
func (s *Service) verifyDeviceBound(ctx context.Context, worker *domain.Worker) (*domain.VerificationResult, error) {
	credentials, err := s.credentials.ListActiveByWorker(ctx, worker.ID)
	if err != nil {
		return nil, err
	}
	if len(credentials) == 0 {
		return nil, domain.ErrNoEnrollment
	}

	available, err := s.authenticator.Available(ctx)
	if err != nil {
		return nil, domain.ErrDeviceUnsupported.WithError(err)
	}
	if !available {
		return nil, domain.ErrDeviceUnsupported
	}

	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("generate challenge: %w", err))
	}

	credentialIDs := make([]string, len(credentials))
	byID := make(map[string]*domain.DeviceCredential, len(credentials))
	for i := range credentials {
		credentialIDs[i] = credentials[i].CredentialID
		byID[credentials[i].CredentialID] = &credentials[i]
	}

	assertion, err := s.authenticator.Assert(ctx, challenge, credentialIDs)
	if err != nil {
		return nil, domain.ErrCaptureFailed.WithError(err)
	}

	result := &domain.VerificationResult{
		WorkerID:   worker.ID,
		Method:     domain.MethodDeviceBound,
		VerifiedAt: time.Now().UTC(),
	}

	stored, ok := byID[assertion.CredentialID]
	if !ok {
		return result, nil
	}
	if err := s.authenticator.VerifySignature(assertion, challenge, stored.PublicKey); err != nil {
		return result, nil
	}

	result.Verified = true
	return result, nil
}

// verifyCrossDevice captures a fresh sample and scores it against the
// worker's active templates with the matching engine. A below-threshold run
// is a negative result, not an error.
func (s *Service) verifyCrossDevice(ctx context.Context, worker *domain.Worker, req Request) (*domain.VerificationResult, error) {
	if !req.Type.Valid() {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("unknown biometric type %q", req.Type))
	}

	pool, err := s.templates.List(ctx, worker.ID, req.Type, true)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoEnrollment
	}

	caps, err := s.provider.Capabilities(ctx)
	if err != nil {
		return nil, domain.ErrDeviceUnsupported.WithError(err)
	}
	if !caps.Supports(req.Type) {
		return nil, domain.ErrDeviceUnsupported.WithError(fmt.Errorf("device cannot capture %s", req.Type))
	}

	sample, err := s.provider.CaptureSample(ctx, capture.Request{
		Type:     req.Type,
		Frame:    req.Frame,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		return nil, domain.ErrCaptureFailed.WithError(err)
	}

	candidate := &domain.BiometricTemplate{
		Type:    sample.Type,
		Vector:  sample.Vector,
		Quality: sample.Quality,
	}
	match := s.engine.Match(candidate, pool)

	result := &domain.VerificationResult{
		WorkerID:   worker.ID,
		Method:     domain.MethodCrossDevice,
		Type:       req.Type,
		Verified:   match.Matched,
		Score:      match.Score,
		VerifiedAt: time.Now().UTC(),
	}
	if match.Matched {
		result.MatchedID = &match.Best.ID
	}

	return result, nil
}
