package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeviceCredential references a device-bound, non-exportable key pair. The
// private key never leaves the device that issued it; only the public half is
// stored here. A worker may hold one credential per device.
type DeviceCredential struct {
	CredentialID   string    `json:"credential_id"`
	WorkerID       uuid.UUID `json:"worker_id"`
	PublicKey      []byte    `json:"-"`
	DevicePlatform string    `json:"device_platform"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Worker is the slice of the workforce directory this core consumes: identity
// plus company scoping. The directory itself is an external collaborator.
type Worker struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
}

// Company is the authentication scope for API access.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
