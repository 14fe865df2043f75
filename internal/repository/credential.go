package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/domain"
)

// CredentialRepository persists device-bound credential references. Only the
// public key half is ever stored.
type CredentialRepository struct {
	pool PgxPool
}

func NewCredentialRepository(pool PgxPool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) Create(ctx context.Context, c *domain.DeviceCredential) error {
	query := `
		INSERT INTO device_credentials (credential_id, worker_id, public_key, device_platform, is_active, created_at)
		VALUES ($1, $2, $3, $4, true, NOW())
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.CredentialID,
		c.WorkerID,
		c.PublicKey,
		c.DevicePlatform,
	).Scan(&c.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCredentialExists
		}
		return fmt.Errorf("create credential: %w", err)
	}

	c.IsActive = true
	return nil
}

// ListActiveByWorker returns a worker's active credentials, most recently
// created first. Verification challenges them in this order.
func (r *CredentialRepository) ListActiveByWorker(ctx context.Context, workerID uuid.UUID) ([]domain.DeviceCredential, error) {
	query := `
		SELECT credential_id, worker_id, public_key, device_platform, is_active, created_at
		FROM device_credentials
		WHERE worker_id = $1 AND is_active = true
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, workerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var credentials []domain.DeviceCredential
	for rows.Next() {
		var c domain.DeviceCredential
		if err := rows.Scan(
			&c.CredentialID,
			&c.WorkerID,
			&c.PublicKey,
			&c.DevicePlatform,
			&c.IsActive,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		credentials = append(credentials, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	return credentials, nil
}

// Deactivate marks a credential inactive; already-inactive credentials are a
// no-op success.
func (r *CredentialRepository) Deactivate(ctx context.Context, credentialID string) error {
	query := `
		UPDATE device_credentials
		SET is_active = false
		WHERE credential_id = $1
	`

	result, err := r.pool.Exec(ctx, query, credentialID)
	if err != nil {
		return fmt.Errorf("deactivate credential: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}
