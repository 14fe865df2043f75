package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crewforge/checkpoint/internal/domain"
)

// VerificationRepository keeps an audit trail of verification outcomes. The
// attendance scan gate reads this trail back by id, so a verification that was
// never recorded cannot be used to clock in.
type VerificationRepository struct {
	pool PgxPool
}

func NewVerificationRepository(pool PgxPool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

func (r *VerificationRepository) Create(ctx context.Context, v *domain.VerificationResult) error {
	query := `
		INSERT INTO verifications (id, worker_id, method, type, verified, match_score, matched_template_id, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		v.ID,
		v.WorkerID,
		v.Method,
		v.Type,
		v.Verified,
		v.Score,
		v.MatchedID,
		v.VerifiedAt,
	)

	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	return nil
}

func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationResult, error) {
	query := `
		SELECT id, worker_id, method, type, verified, match_score, matched_template_id, verified_at
		FROM verifications
		WHERE id = $1
	`

	var v domain.VerificationResult
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.WorkerID,
		&v.Method,
		&v.Type,
		&v.Verified,
		&v.Score,
		&v.MatchedID,
		&v.VerifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}

	return &v, nil
}
