package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/crewforge/checkpoint/internal/domain"
)

// TemplateRepository persists biometric templates. No matching logic lives
// here; it stores, lists and deactivates, nothing else.
type TemplateRepository struct {
	pool PgxPool
}

func NewTemplateRepository(pool PgxPool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Save validates the template invariants and inserts it. A feature vector
// whose length mismatches the type's fixed schema is rejected before any
// write.
func (r *TemplateRepository) Save(ctx context.Context, t *domain.BiometricTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO biometric_templates
			(id, worker_id, company_id, type, payload, vector, quality, device_id, algorithm_id, captured_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, NOW())
		RETURNING created_at
	`

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		t.ID,
		t.WorkerID,
		t.CompanyID,
		t.Type,
		t.Payload,
		toVector(t.Vector),
		t.Quality,
		t.DeviceID,
		t.AlgorithmID,
		t.CapturedAt,
	).Scan(&t.CreatedAt)

	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}

	t.IsActive = true
	return nil
}

// List returns a worker's templates ordered by creation time descending.
// An empty bioType lists all types; activeOnly filters out deactivated rows.
func (r *TemplateRepository) List(ctx context.Context, workerID uuid.UUID, bioType domain.BiometricType, activeOnly bool) ([]domain.BiometricTemplate, error) {
	query := `
		SELECT id, worker_id, company_id, type, payload, vector, quality, device_id, algorithm_id, captured_at, is_active, created_at
		FROM biometric_templates
		WHERE worker_id = $1
	`
	args := []any{workerID}

	if bioType != "" {
		query += ` AND type = $2`
		args = append(args, bioType)
	}
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.BiometricTemplate
	for rows.Next() {
		var t domain.BiometricTemplate
		var vector *pgvector.Vector

		if err := rows.Scan(
			&t.ID,
			&t.WorkerID,
			&t.CompanyID,
			&t.Type,
			&t.Payload,
			&vector,
			&t.Quality,
			&t.DeviceID,
			&t.AlgorithmID,
			&t.CapturedAt,
			&t.IsActive,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}

		t.Vector = fromVector(vector)
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return templates, nil
}

// GetByID returns a single template by primary key.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BiometricTemplate, error) {
	query := `
		SELECT id, worker_id, company_id, type, payload, vector, quality, device_id, algorithm_id, captured_at, is_active, created_at
		FROM biometric_templates
		WHERE id = $1
	`

	var t domain.BiometricTemplate
	var vector *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.WorkerID,
		&t.CompanyID,
		&t.Type,
		&t.Payload,
		&vector,
		&t.Quality,
		&t.DeviceID,
		&t.AlgorithmID,
		&t.CapturedAt,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	t.Vector = fromVector(vector)
	return &t, nil
}

// Deactivate marks a template inactive. Deactivating an already-inactive
// template is a no-op success; templates are never hard-deleted.
func (r *TemplateRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE biometric_templates
		SET is_active = false
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}

	return nil
}

func toVector(components []float64) *pgvector.Vector {
	if len(components) == 0 {
		return nil
	}
	floats := make([]float32, len(components))
	for i, v := range components {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)
	return &vec
}

func fromVector(vec *pgvector.Vector) []float64 {
	if vec == nil || vec.Slice() == nil {
		return nil
	}
	components := make([]float64, len(vec.Slice()))
	for i, v := range vec.Slice() {
		components[i] = float64(v)
	}
	return components
}
