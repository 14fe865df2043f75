package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewforge/checkpoint/internal/domain"
)

// AttendanceRepository persists the append-only event log and the per-worker
// clock-status cache. The event log is the source of truth; the status row is
// a cache of the latest event and is written with a compare-and-swap keyed by
// last_event_id so racing scans cannot both win.
type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// AppendEvent writes one immutable attendance event.
func (r *AttendanceRepository) AppendEvent(ctx context.Context, ev *domain.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events
			(id, worker_id, project_id, location_id, event_type, event_time, device_info, geo_lat, geo_lon, geo_accuracy, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING created_at
	`

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	var lat, lon, accuracy *float64
	if ev.Geo != nil {
		lat = &ev.Geo.Latitude
		lon = &ev.Geo.Longitude
		accuracy = &ev.Geo.Accuracy
	}

	err := r.pool.QueryRow(ctx, query,
		ev.ID,
		ev.WorkerID,
		ev.ProjectID,
		ev.LocationID,
		ev.EventType,
		ev.EventTime,
		ev.DeviceInfo,
		lat,
		lon,
		accuracy,
		ev.Notes,
	).Scan(&ev.CreatedAt)

	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}

// LatestEvent returns the most recent event for a worker, for re-deriving the
// clock status when the cache row is missing or stale.
func (r *AttendanceRepository) LatestEvent(ctx context.Context, workerID uuid.UUID) (*domain.AttendanceEvent, error) {
	query := `
		SELECT id, worker_id, project_id, location_id, event_type, event_time, device_info, geo_lat, geo_lon, geo_accuracy, notes, created_at
		FROM attendance_events
		WHERE worker_id = $1
		ORDER BY event_time DESC, created_at DESC
		LIMIT 1
	`

	ev, err := r.scanEvent(r.pool.QueryRow(ctx, query, workerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClockStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest event: %w", err)
	}

	return ev, nil
}

// ListEvents returns a worker's events newest first.
func (r *AttendanceRepository) ListEvents(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.AttendanceEvent, error) {
	query := `
		SELECT id, worker_id, project_id, location_id, event_type, event_time, device_info, geo_lat, geo_lon, geo_accuracy, notes, created_at
		FROM attendance_events
		WHERE worker_id = $1
		ORDER BY event_time DESC, created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.AttendanceEvent
	for rows.Next() {
		ev, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}

// GetStatus reads the cached clock status for a worker.
func (r *AttendanceRepository) GetStatus(ctx context.Context, workerID uuid.UUID) (*domain.WorkerClockStatus, error) {
	query := `
		SELECT worker_id, state, last_event_id, last_event_type, last_event_time, updated_at
		FROM worker_clock_status
		WHERE worker_id = $1
	`

	var s domain.WorkerClockStatus
	err := r.pool.QueryRow(ctx, query, workerID).Scan(
		&s.WorkerID,
		&s.State,
		&s.LastEventID,
		&s.LastEventType,
		&s.LastEventTime,
		&s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClockStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get clock status: %w", err)
	}

	return &s, nil
}

// SaveStatus writes the status cache row guarded by a compare-and-swap on the
// previous last_event_id. Pass uuid.Nil as expected when the worker had no
// status row yet. Losing the race returns ErrConcurrencyConflict; the caller
// re-fetches and may retry.
func (r *AttendanceRepository) SaveStatus(ctx context.Context, s *domain.WorkerClockStatus, expected uuid.UUID) error {
	if expected == uuid.Nil {
		query := `
			INSERT INTO worker_clock_status (worker_id, state, last_event_id, last_event_type, last_event_time, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (worker_id) DO NOTHING
		`

		result, err := r.pool.Exec(ctx, query,
			s.WorkerID, s.State, s.LastEventID, s.LastEventType, s.LastEventTime)
		if err != nil {
			return fmt.Errorf("insert clock status: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrConcurrencyConflict
		}
		return nil
	}

	query := `
		UPDATE worker_clock_status
		SET state = $2, last_event_id = $3, last_event_type = $4, last_event_time = $5, updated_at = NOW()
		WHERE worker_id = $1 AND last_event_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		s.WorkerID, s.State, s.LastEventID, s.LastEventType, s.LastEventTime, expected)
	if err != nil {
		return fmt.Errorf("update clock status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AttendanceRepository) scanEvent(row rowScanner) (*domain.AttendanceEvent, error) {
	var ev domain.AttendanceEvent
	var lat, lon, accuracy *float64

	if err := row.Scan(
		&ev.ID,
		&ev.WorkerID,
		&ev.ProjectID,
		&ev.LocationID,
		&ev.EventType,
		&ev.EventTime,
		&ev.DeviceInfo,
		&lat,
		&lon,
		&accuracy,
		&ev.Notes,
		&ev.CreatedAt,
	); err != nil {
		return nil, err
	}

	if lat != nil && lon != nil {
		ev.Geo = &domain.Geolocation{Latitude: *lat, Longitude: *lon}
		if accuracy != nil {
			ev.Geo.Accuracy = *accuracy
		}
	}

	return &ev, nil
}
