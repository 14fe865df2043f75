package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewforge/checkpoint/internal/domain"
)

// WorkerRepository is the adapter to the workforce directory. The core only
// reads identity and company scoping from it.
type WorkerRepository struct {
	pool PgxPool
}

func NewWorkerRepository(pool PgxPool) *WorkerRepository {
	return &WorkerRepository{pool: pool}
}

func (r *WorkerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Worker, error) {
	query := `
		SELECT id, company_id, name
		FROM workers
		WHERE id = $1
	`

	var w domain.Worker
	err := r.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.CompanyID, &w.Name)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}

	return &w, nil
}
