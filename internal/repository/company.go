package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/crewforge/checkpoint/internal/domain"
)

// CompanyRepository backs API-key authentication: requests are scoped to the
// company whose hashed key they present.
type CompanyRepository struct {
	pool PgxPool
}

func NewCompanyRepository(pool PgxPool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func (r *CompanyRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Company, error) {
	query := `
		SELECT c.id, c.name, c.is_active, c.created_at
		FROM companies c
		INNER JOIN api_keys ak ON ak.company_id = c.id
		WHERE ak.key_hash = $1 AND ak.is_active = true AND c.is_active = true
	`

	var company domain.Company
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&company.ID,
		&company.Name,
		&company.IsActive,
		&company.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get company by api key: %w", err)
	}

	return &company, nil
}

// TouchAPIKey stamps last_used_at for the key with the given hash. Callers
// batch and debounce; a missing key is not an error here.
func (r *CompanyRepository) TouchAPIKey(ctx context.Context, keyHash string) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE key_hash = $1`

	if _, err := r.pool.Exec(ctx, query, keyHash); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}

	return nil
}
