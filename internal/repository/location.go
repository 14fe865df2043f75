package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/crewforge/checkpoint/internal/domain"
)

// LocationCodeRepository resolves scanned QR hashes to locations. Unknown
// hashes map to ErrInvalidCode; activity/expiry checks belong to the caller
// so it can report them with the same error kind.
type LocationCodeRepository struct {
	pool PgxPool
}

func NewLocationCodeRepository(pool PgxPool) *LocationCodeRepository {
	return &LocationCodeRepository{pool: pool}
}

func (r *LocationCodeRepository) GetByCodeHash(ctx context.Context, codeHash string) (*domain.LocationCode, error) {
	query := `
		SELECT id, code_hash, location_id, project_id, company_id, name, intent, is_active, expires_at, created_at
		FROM location_codes
		WHERE code_hash = $1
	`

	var c domain.LocationCode
	err := r.pool.QueryRow(ctx, query, codeHash).Scan(
		&c.ID,
		&c.CodeHash,
		&c.LocationID,
		&c.ProjectID,
		&c.CompanyID,
		&c.Name,
		&c.Intent,
		&c.IsActive,
		&c.ExpiresAt,
		&c.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("get location code: %w", err)
	}

	return &c, nil
}
