package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crewforge/checkpoint/internal/domain"
)

type MockLocationResolver struct {
	mock.Mock
}

func (m *MockLocationResolver) GetByCodeHash(ctx context.Context, codeHash string) (*domain.LocationCode, error) {
	args := m.Called(ctx, codeHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LocationCode), args.Error(1)
}

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

type MockVerificationReader struct {
	mock.Mock
}

func (m *MockVerificationReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationResult), args.Error(1)
}

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) AppendEvent(ctx context.Context, ev *domain.AttendanceEvent) error {
	args := m.Called(ctx, ev)
	if args.Error(0) == nil && ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockEventStore) LatestEvent(ctx context.Context, workerID uuid.UUID) (*domain.AttendanceEvent, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceEvent), args.Error(1)
}

func (m *MockEventStore) ListEvents(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error) {
	args := m.Called(ctx, workerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceEvent), args.Error(1)
}

func (m *MockEventStore) GetStatus(ctx context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerClockStatus), args.Error(1)
}

func (m *MockEventStore) SaveStatus(ctx context.Context, s *domain.WorkerClockStatus, expected uuid.UUID) error {
	args := m.Called(ctx, s, expected)
	return args.Error(0)
}

func testWorker() *domain.Worker {
	return &domain.Worker{ID: uuid.New(), CompanyID: uuid.New(), Name: "Dana Reyes"}
}

func testCode(companyID uuid.UUID, intent domain.ScanIntent) *domain.LocationCode {
	return &domain.LocationCode{
		ID:         uuid.New(),
		CodeHash:   "hash_gate_a",
		LocationID: uuid.New(),
		ProjectID:  uuid.New(),
		CompanyID:  companyID,
		Name:       "Gate A",
		Intent:     intent,
		IsActive:   true,
	}
}

// verifiedReader returns a reader holding one fresh passed verification for
// the worker, and the id a scan would reference it by.
func verifiedReader(workerID uuid.UUID) (*MockVerificationReader, uuid.UUID) {
	id := uuid.New()
	reader := &MockVerificationReader{}
	reader.On("GetByID", mock.Anything, id).Return(&domain.VerificationResult{
		ID:         id,
		WorkerID:   workerID,
		Method:     domain.MethodCrossDevice,
		Verified:   true,
		VerifiedAt: time.Now(),
	}, nil)
	return reader, id
}

func TestProcessor_Process_FirstScanClocksIn(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, "hash_gate_a").Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)
	events.On("LatestEvent", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)
	events.On("AppendEvent", mock.Anything, mock.MatchedBy(func(ev *domain.AttendanceEvent) bool {
		return ev.EventType == domain.EventClockIn && ev.WorkerID == worker.ID
	})).Return(nil)
	events.On("SaveStatus", mock.Anything, mock.Anything, uuid.Nil).Return(nil)

	p := NewProcessor(locations, workers, events, verifications)

	result, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.EventClockIn, result.Event.EventType)
	assert.Equal(t, domain.StateClockedIn, result.Status.State)
	assert.Equal(t, code.ProjectID, result.Event.ProjectID)
	assert.Contains(t, result.Summary, "Dana Reyes")
	assert.Contains(t, result.Summary, "clocked in")
	assert.Contains(t, result.Summary, "Gate A")

	events.AssertExpectations(t)
}

func TestProcessor_Process_BreakCodeWhileClockedIn(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentBreakStart)
	lastEventID := uuid.New()

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, "hash_gate_a").Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("LatestEvent", mock.Anything, worker.ID).Return(&domain.AttendanceEvent{
		ID:        lastEventID,
		WorkerID:  worker.ID,
		EventType: domain.EventClockIn,
		EventTime: time.Now().Add(-2 * time.Hour),
	}, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(&domain.WorkerClockStatus{
		WorkerID:    worker.ID,
		State:       domain.StateClockedIn,
		LastEventID: lastEventID,
	}, nil)
	events.On("AppendEvent", mock.Anything, mock.Anything).Return(nil)
	events.On("SaveStatus", mock.Anything, mock.MatchedBy(func(s *domain.WorkerClockStatus) bool {
		return s.State == domain.StateOnBreak
	}), lastEventID).Return(nil)

	p := NewProcessor(locations, workers, events, verifications)

	result, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.EventBreakStart, result.Event.EventType)
	assert.Equal(t, domain.StateOnBreak, result.Status.State)
	assert.Contains(t, result.Summary, "started a break")

	events.AssertExpectations(t)
}

func TestProcessor_Process_StatusCacheMissRederivesFromLog(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)
	events.On("LatestEvent", mock.Anything, worker.ID).Return(&domain.AttendanceEvent{
		ID:        uuid.New(),
		WorkerID:  worker.ID,
		EventType: domain.EventClockIn,
		EventTime: time.Now().Add(-time.Hour),
	}, nil)
	// latest event says clocked_in, so an auto scan clocks out
	events.On("AppendEvent", mock.Anything, mock.MatchedBy(func(ev *domain.AttendanceEvent) bool {
		return ev.EventType == domain.EventClockOut
	})).Return(nil)
	events.On("SaveStatus", mock.Anything, mock.Anything, uuid.Nil).Return(nil)

	p := NewProcessor(locations, workers, events, verifications)

	result, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StateClockedOut, result.Status.State)
}

func TestProcessor_Process_StaleStatusRowIsOverriddenByLog(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)
	prevEventID := uuid.New()
	latestEventID := uuid.New()

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)

	// A crash after the event write left the status row one event behind:
	// the log already holds a clock_in but the row still says clocked_out.
	events.On("LatestEvent", mock.Anything, worker.ID).Return(&domain.AttendanceEvent{
		ID:        latestEventID,
		WorkerID:  worker.ID,
		EventType: domain.EventClockIn,
		EventTime: time.Now().Add(-time.Minute),
	}, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(&domain.WorkerClockStatus{
		WorkerID:    worker.ID,
		State:       domain.StateClockedOut,
		LastEventID: prevEventID,
	}, nil)

	// The log wins: the next auto scan clocks out instead of producing a
	// second consecutive clock_in, and the write heals the stale row.
	events.On("AppendEvent", mock.Anything, mock.MatchedBy(func(ev *domain.AttendanceEvent) bool {
		return ev.EventType == domain.EventClockOut
	})).Return(nil)
	events.On("SaveStatus", mock.Anything, mock.MatchedBy(func(s *domain.WorkerClockStatus) bool {
		return s.State == domain.StateClockedOut
	}), prevEventID).Return(nil)

	p := NewProcessor(locations, workers, events, verifications)

	result, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.EventClockOut, result.Event.EventType)
	assert.Equal(t, domain.StateClockedOut, result.Status.State)

	events.AssertExpectations(t)
}

func TestProcessor_Process_RejectsInvalidCodeBeforeTouchingState(t *testing.T) {
	worker := testWorker()
	expired := testCode(worker.CompanyID, domain.IntentAuto)
	past := time.Now().Add(-time.Hour)
	expired.ExpiresAt = &past

	tests := []struct {
		name string
		code *domain.LocationCode
	}{
		{name: "expired code", code: expired},
		{
			name: "inactive code",
			code: &domain.LocationCode{CompanyID: worker.CompanyID, Intent: domain.IntentAuto, IsActive: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locations := &MockLocationResolver{}
			workers := &MockWorkerDirectory{}
			events := &MockEventStore{}
			verifications, verificationID := verifiedReader(worker.ID)

			locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(tt.code, nil)

			p := NewProcessor(locations, workers, events, verifications)

			_, err := p.Process(context.Background(), ScanRequest{
				WorkerID:       worker.ID,
				CodeHash:       "hash_stale",
				VerificationID: verificationID,
			})

			assert.ErrorIs(t, err, domain.ErrInvalidCode)
			events.AssertNotCalled(t, "AppendEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessor_Process_RejectsForeignCompanyCode(t *testing.T) {
	worker := testWorker()
	code := testCode(uuid.New(), domain.IntentAuto)

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)

	p := NewProcessor(locations, workers, events, verifications)

	_, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestProcessor_Process_RequiresStoredVerification(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)
	stale := time.Now().Add(-verificationMaxAge - time.Minute)

	tests := []struct {
		name           string
		verificationID uuid.UUID
		stored         *domain.VerificationResult
		storedErr      error
		wantErr        error
	}{
		{
			name:           "missing verification id",
			verificationID: uuid.Nil,
			wantErr:        domain.ErrVerificationRequired,
		},
		{
			name:           "unknown verification id",
			verificationID: uuid.New(),
			storedErr:      domain.ErrNotFound,
			wantErr:        domain.ErrVerificationRequired,
		},
		{
			name:           "verification for another worker",
			verificationID: uuid.New(),
			stored:         &domain.VerificationResult{WorkerID: uuid.New(), Verified: true, VerifiedAt: time.Now()},
			wantErr:        domain.ErrVerificationRequired,
		},
		{
			name:           "failed verification",
			verificationID: uuid.New(),
			stored:         &domain.VerificationResult{WorkerID: worker.ID, Verified: false, VerifiedAt: time.Now()},
			wantErr:        domain.ErrNoMatch,
		},
		{
			name:           "expired verification",
			verificationID: uuid.New(),
			stored:         &domain.VerificationResult{WorkerID: worker.ID, Verified: true, VerifiedAt: stale},
			wantErr:        domain.ErrVerificationRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locations := &MockLocationResolver{}
			workers := &MockWorkerDirectory{}
			events := &MockEventStore{}
			verifications := &MockVerificationReader{}

			locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
			workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
			if tt.verificationID != uuid.Nil {
				if tt.stored != nil {
					tt.stored.ID = tt.verificationID
				}
				verifications.On("GetByID", mock.Anything, tt.verificationID).Return(tt.stored, tt.storedErr)
			}

			p := NewProcessor(locations, workers, events, verifications)

			_, err := p.Process(context.Background(), ScanRequest{
				WorkerID:       worker.ID,
				CodeHash:       "hash_gate_a",
				VerificationID: tt.verificationID,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			events.AssertNotCalled(t, "AppendEvent", mock.Anything, mock.Anything)
		})
	}
}

// fakeDedupeCache is an in-memory DedupeCacheInterface; err is returned from
// every call when set.
type fakeDedupeCache struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newFakeDedupeCache() *fakeDedupeCache {
	return &fakeDedupeCache{keys: make(map[string]bool)}
}

func (f *fakeDedupeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], f.err
}

func (f *fakeDedupeCache) Set(_ context.Context, key string, _ []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
	return f.err
}

func TestProcessor_Process_DuplicateScanRejectedInsideWindow(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	store := newFakeEventStore()
	dedupe := newFakeDedupeCache()
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)

	p := NewProcessor(locations, workers, store, verifications, WithDedupe(dedupe, DefaultDedupeWindow))

	req := ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	}

	_, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	_, err = p.Process(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDuplicateScan)

	// only the first scan reached the log
	assert.Len(t, store.log, 1)
}

func TestProcessor_Process_DedupeCacheFailureDoesNotBlockScan(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	store := newFakeEventStore()
	dedupe := newFakeDedupeCache()
	dedupe.err = context.DeadlineExceeded
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)

	p := NewProcessor(locations, workers, store, verifications, WithDedupe(dedupe, DefaultDedupeWindow))

	_, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	require.NoError(t, err)
	assert.Len(t, store.log, 1)
}

func TestProcessor_Process_LostStatusRaceSurfacesConflict(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)
	lastEventID := uuid.New()

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("LatestEvent", mock.Anything, worker.ID).Return(&domain.AttendanceEvent{
		ID:        lastEventID,
		WorkerID:  worker.ID,
		EventType: domain.EventClockOut,
		EventTime: time.Now().Add(-time.Hour),
	}, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(&domain.WorkerClockStatus{
		WorkerID:    worker.ID,
		State:       domain.StateClockedOut,
		LastEventID: lastEventID,
	}, nil)
	events.On("AppendEvent", mock.Anything, mock.Anything).Return(nil)
	events.On("SaveStatus", mock.Anything, mock.Anything, lastEventID).Return(domain.ErrConcurrencyConflict)

	p := NewProcessor(locations, workers, events, verifications)

	_, err := p.Process(context.Background(), ScanRequest{
		WorkerID:       worker.ID,
		CodeHash:       "hash_gate_a",
		VerificationID: verificationID,
	})

	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

// fakeEventStore is an in-memory store with real CAS semantics, for exercising
// concurrent scans end to end.
type fakeEventStore struct {
	mu     sync.Mutex
	log    []domain.AttendanceEvent
	status map[uuid.UUID]*domain.WorkerClockStatus
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{status: make(map[uuid.UUID]*domain.WorkerClockStatus)}
}

func (f *fakeEventStore) AppendEvent(_ context.Context, ev *domain.AttendanceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	f.log = append(f.log, *ev)
	return nil
}

func (f *fakeEventStore) LatestEvent(_ context.Context, workerID uuid.UUID) (*domain.AttendanceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.log) - 1; i >= 0; i-- {
		if f.log[i].WorkerID == workerID {
			ev := f.log[i]
			return &ev, nil
		}
	}
	return nil, domain.ErrClockStatusNotFound
}

func (f *fakeEventStore) ListEvents(_ context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AttendanceEvent
	for i := len(f.log) - 1; i >= 0 && len(out) < limit; i-- {
		if f.log[i].WorkerID == workerID {
			out = append(out, f.log[i])
		}
	}
	return out, nil
}

func (f *fakeEventStore) GetStatus(_ context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.status[workerID]
	if !ok {
		return nil, domain.ErrClockStatusNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeEventStore) SaveStatus(_ context.Context, s *domain.WorkerClockStatus, expected uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.status[s.WorkerID]
	if expected == uuid.Nil {
		if ok {
			return domain.ErrConcurrencyConflict
		}
	} else {
		if !ok || current.LastEventID != expected {
			return domain.ErrConcurrencyConflict
		}
	}

	copied := *s
	f.status[s.WorkerID] = &copied
	return nil
}

func TestProcessor_Process_ConcurrentScansSerialize(t *testing.T) {
	worker := testWorker()
	code := testCode(worker.CompanyID, domain.IntentAuto)

	locations := &MockLocationResolver{}
	workers := &MockWorkerDirectory{}
	store := newFakeEventStore()
	verifications, verificationID := verifiedReader(worker.ID)

	locations.On("GetByCodeHash", mock.Anything, mock.Anything).Return(code, nil)
	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)

	p := NewProcessor(locations, workers, store, verifications)

	const scans = 8
	var wg sync.WaitGroup
	errs := make([]error, scans)

	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Process(context.Background(), ScanRequest{
				WorkerID:       worker.ID,
				CodeHash:       "hash_gate_a",
				VerificationID: verificationID,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "scan %d", i)
	}

	// even number of auto scans must land back on clocked_out, alternating
	// clock_in and clock_out in the log
	require.Len(t, store.log, scans)
	for i, ev := range store.log {
		if i%2 == 0 {
			assert.Equal(t, domain.EventClockIn, ev.EventType, "event %d", i)
		} else {
			assert.Equal(t, domain.EventClockOut, ev.EventType, "event %d", i)
		}
	}
	assert.Equal(t, domain.StateClockedOut, store.status[worker.ID].State)
	assert.Equal(t, store.log[scans-1].ID, store.status[worker.ID].LastEventID)
}

func TestProcessor_Status_RederivedOnCacheMiss(t *testing.T) {
	worker := testWorker()
	eventID := uuid.New()

	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}

	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)
	events.On("LatestEvent", mock.Anything, worker.ID).Return(&domain.AttendanceEvent{
		ID:        eventID,
		WorkerID:  worker.ID,
		EventType: domain.EventBreakStart,
		EventTime: time.Now(),
	}, nil)

	p := NewProcessor(&MockLocationResolver{}, workers, events, &MockVerificationReader{})

	status, err := p.Status(context.Background(), worker.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StateOnBreak, status.State)
	assert.Equal(t, eventID, status.LastEventID)
}

func TestProcessor_Status_NoEventsMeansClockedOut(t *testing.T) {
	worker := testWorker()

	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}

	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("GetStatus", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)
	events.On("LatestEvent", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)

	p := NewProcessor(&MockLocationResolver{}, workers, events, &MockVerificationReader{})

	status, err := p.Status(context.Background(), worker.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StateClockedOut, status.State)
	assert.Equal(t, uuid.Nil, status.LastEventID)
}

func TestProcessor_Status_PropagatesInfrastructureErrors(t *testing.T) {
	worker := testWorker()

	t.Run("status read failure", func(t *testing.T) {
		workers := &MockWorkerDirectory{}
		events := &MockEventStore{}

		workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
		events.On("GetStatus", mock.Anything, worker.ID).Return(nil, context.DeadlineExceeded)

		p := NewProcessor(&MockLocationResolver{}, workers, events, &MockVerificationReader{})

		status, err := p.Status(context.Background(), worker.ID)

		require.Nil(t, status)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		events.AssertNotCalled(t, "LatestEvent", mock.Anything, mock.Anything)
	})

	t.Run("log read failure after cache miss", func(t *testing.T) {
		workers := &MockWorkerDirectory{}
		events := &MockEventStore{}

		workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
		events.On("GetStatus", mock.Anything, worker.ID).Return(nil, domain.ErrClockStatusNotFound)
		events.On("LatestEvent", mock.Anything, worker.ID).Return(nil, context.DeadlineExceeded)

		p := NewProcessor(&MockLocationResolver{}, workers, events, &MockVerificationReader{})

		status, err := p.Status(context.Background(), worker.ID)

		require.Nil(t, status)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestProcessor_Events_LimitsApplied(t *testing.T) {
	worker := testWorker()

	workers := &MockWorkerDirectory{}
	events := &MockEventStore{}

	workers.On("GetByID", mock.Anything, worker.ID).Return(worker, nil)
	events.On("ListEvents", mock.Anything, worker.ID, defaultEventLimit).
		Return([]domain.AttendanceEvent{}, nil).Once()
	events.On("ListEvents", mock.Anything, worker.ID, maxEventLimit).
		Return([]domain.AttendanceEvent{}, nil).Once()

	p := NewProcessor(&MockLocationResolver{}, workers, events, &MockVerificationReader{})

	_, err := p.Events(context.Background(), worker.ID, 0)
	require.NoError(t, err)

	_, err = p.Events(context.Background(), worker.ID, 10000)
	require.NoError(t, err)

	events.AssertExpectations(t)
}
