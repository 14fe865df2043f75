// Package attendance turns verified QR scans into attendance events. The event
// log is the source of truth; the per-worker clock status is a cache of the
// latest event, guarded by a compare-and-swap so racing scans from different
// instances cannot both win. Within one instance scans for the same worker are
// serialized by a keyed mutex.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/domain"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200

	// DefaultDedupeWindow is how long an identical worker+code scan is
	// treated as a double-tap rather than a new event.
	DefaultDedupeWindow = 30 * time.Second

	// verificationMaxAge bounds how old a verification may be when the scan
	// referencing it arrives.
	verificationMaxAge = 5 * time.Minute
)

type LocationResolverInterface interface {
	GetByCodeHash(ctx context.Context, codeHash string) (*domain.LocationCode, error)
}

type WorkerDirectoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error)
}

// VerificationReaderInterface looks up audited verification outcomes so the
// scan gate checks them server side. The client hands over only an id; the
// outcome itself is never taken from the request.
type VerificationReaderInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationResult, error)
}

// DedupeCacheInterface marks recently processed scans so a double-tap at the
// gate does not toggle the clock twice.
type DedupeCacheInterface interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type EventStoreInterface interface {
	AppendEvent(ctx context.Context, ev *domain.AttendanceEvent) error
	LatestEvent(ctx context.Context, workerID uuid.UUID) (*domain.AttendanceEvent, error)
	ListEvents(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error)
	GetStatus(ctx context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error)
	SaveStatus(ctx context.Context, s *domain.WorkerClockStatus, expected uuid.UUID) error
}

// ScanRequest is one QR scan by a verified worker. VerificationID references
// a row in the verifications audit log.
type ScanRequest struct {
	WorkerID       uuid.UUID           `json:"worker_id"`
	CodeHash       string              `json:"code_hash"`
	VerificationID uuid.UUID           `json:"verification_id"`
	DeviceInfo     string              `json:"device_info,omitempty"`
	Geo            *domain.Geolocation `json:"geolocation,omitempty"`
	Notes          string              `json:"notes,omitempty"`
}

// ScanResult is the recorded event plus the resulting clock status and a
// human-readable summary for the scanning device to display.
type ScanResult struct {
	Event   *domain.AttendanceEvent   `json:"event"`
	Status  *domain.WorkerClockStatus `json:"status"`
	Summary string                    `json:"summary"`
}

type Processor struct {
	locations     LocationResolverInterface
	workers       WorkerDirectoryInterface
	events        EventStoreInterface
	verifications VerificationReaderInterface
	dedupe        DedupeCacheInterface
	dedupeWindow  time.Duration

	mu      sync.Mutex
	workerL map[uuid.UUID]*sync.Mutex
}

type Option func(*Processor)

// WithDedupe rejects a repeat of the same worker+code scan inside window.
func WithDedupe(cache DedupeCacheInterface, window time.Duration) Option {
	return func(p *Processor) {
		p.dedupe = cache
		p.dedupeWindow = window
	}
}

func NewProcessor(locations LocationResolverInterface, workers WorkerDirectoryInterface, events EventStoreInterface, verifications VerificationReaderInterface, opts ...Option) *Processor {
	p := &Processor{
		locations:     locations,
		workers:       workers,
		events:        events,
		verifications: verifications,
		workerL:       make(map[uuid.UUID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one scan end to end: resolve and validate the code, check
// the verification, compute the transition, append the event and refresh the
// status cache. The event write happens before the status write; a lost
// status race surfaces as ErrConcurrencyConflict and the event stands (the
// log, not the cache, is the record).
func (p *Processor) Process(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	code, err := p.locations.GetByCodeHash(ctx, req.CodeHash)
	if err != nil {
		return nil, err
	}
	if !code.Usable(time.Now()) {
		return nil, domain.ErrInvalidCode
	}

	worker, err := p.workers.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}
	if worker.CompanyID != code.CompanyID {
		return nil, domain.ErrInvalidCode.WithError(fmt.Errorf("code belongs to another company"))
	}

	if err := p.requireVerified(ctx, req.VerificationID, worker.ID); err != nil {
		return nil, err
	}

	lock := p.workerLock(worker.ID)
	lock.Lock()
	defer lock.Unlock()

	// Dedupe is best effort: a cache read error never blocks a scan.
	dedupeKey := fmt.Sprintf("scan:%s:%s", worker.ID, req.CodeHash)
	if p.dedupe != nil {
		if seen, err := p.dedupe.Exists(ctx, dedupeKey); err == nil && seen {
			return nil, domain.ErrDuplicateScan
		}
	}

	state, expected, err := p.currentState(ctx, worker.ID)
	if err != nil {
		return nil, err
	}

	eventType, nextState := domain.NextTransition(state, code.Intent)

	event := &domain.AttendanceEvent{
		WorkerID:   worker.ID,
		ProjectID:  code.ProjectID,
		LocationID: code.LocationID,
		EventType:  eventType,
		EventTime:  time.Now().UTC(),
		DeviceInfo: req.DeviceInfo,
		Geo:        req.Geo,
		Notes:      req.Notes,
	}
	if err := p.events.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	status := domain.StatusFromEvent(event)
	status.UpdatedAt = time.Now().UTC()
	if err := p.events.SaveStatus(ctx, status, expected); err != nil {
		return nil, err
	}

	if p.dedupe != nil {
		_ = p.dedupe.Set(ctx, dedupeKey, []byte(event.ID.String()), p.dedupeWindow)
	}

	return &ScanResult{
		Event:   event,
		Status:  status,
		Summary: summarize(worker, code, eventType, nextState),
	}, nil
}

// Status returns the worker's clock status, re-deriving it from the latest
// event when the cache row is missing. A worker with no events at all is
// simply clocked out; an infrastructure failure on either read is propagated,
// never reported as a default state.
func (p *Processor) Status(ctx context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error) {
	if _, err := p.workers.GetByID(ctx, workerID); err != nil {
		return nil, err
	}

	status, err := p.events.GetStatus(ctx, workerID)
	if err == nil {
		return status, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	latest, err := p.events.LatestEvent(ctx, workerID)
	if err == nil {
		return domain.StatusFromEvent(latest), nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	return &domain.WorkerClockStatus{WorkerID: workerID, State: domain.StateClockedOut}, nil
}

// Events returns a worker's most recent events, newest first.
func (p *Processor) Events(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error) {
	if _, err := p.workers.GetByID(ctx, workerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	return p.events.ListEvents(ctx, workerID, limit)
}

// requireVerified loads the referenced verification from the audit log and
// checks that it belongs to the worker, passed, and is recent.
func (p *Processor) requireVerified(ctx context.Context, verificationID, workerID uuid.UUID) error {
	if verificationID == uuid.Nil {
		return domain.ErrVerificationRequired
	}

	verification, err := p.verifications.GetByID(ctx, verificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrVerificationRequired.WithError(fmt.Errorf("verification %s not found", verificationID))
		}
		return err
	}

	if verification.WorkerID != workerID {
		return domain.ErrVerificationRequired.WithError(errors.New("verification belongs to another worker"))
	}
	if !verification.Verified {
		return domain.ErrNoMatch
	}
	if time.Since(verification.VerifiedAt) > verificationMaxAge {
		return domain.ErrVerificationRequired.WithError(fmt.Errorf("verification older than %s", verificationMaxAge))
	}

	return nil
}

// currentState derives the state from the latest event; the log, not the
// status row, is the source of truth. The cached row contributes only the
// expected id for the CAS, so a row left stale by a crash between the event
// and status writes is overwritten on the next scan instead of being trusted.
// uuid.Nil as expected means no row existed and the write must insert.
func (p *Processor) currentState(ctx context.Context, workerID uuid.UUID) (domain.ClockState, uuid.UUID, error) {
	latest, err := p.events.LatestEvent(ctx, workerID)
	if err != nil && !isNotFound(err) {
		return "", uuid.Nil, err
	}

	expected := uuid.Nil
	status, serr := p.events.GetStatus(ctx, workerID)
	if serr == nil {
		expected = status.LastEventID
	} else if !isNotFound(serr) {
		return "", uuid.Nil, serr
	}

	if latest == nil {
		return domain.StateClockedOut, expected, nil
	}
	return latest.EventType.ResultingState(), expected, nil
}

func (p *Processor) workerLock(workerID uuid.UUID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.workerL[workerID]
	if !ok {
		lock = &sync.Mutex{}
		p.workerL[workerID] = lock
	}
	return lock
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrClockStatusNotFound)
}

func summarize(worker *domain.Worker, code *domain.LocationCode, eventType domain.EventType, next domain.ClockState) string {
	var action string
	switch eventType {
	case domain.EventClockIn:
		action = "clocked in"
	case domain.EventClockOut:
		action = "clocked out"
	case domain.EventBreakStart:
		action = "started a break"
	case domain.EventBreakEnd:
		action = "ended a break"
	}

	location := code.Name
	if location == "" {
		location = code.LocationID.String()
	}

	return fmt.Sprintf("%s %s at %s (now %s)", worker.Name, action, location, next)
}
