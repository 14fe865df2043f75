package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BiometricType identifies which sensor a template came from.
type BiometricType string

const (
	TypeFingerprint BiometricType = "fingerprint"
	TypeFace        BiometricType = "face"
)

// Feature vectors have a fixed length per type; every template of a type must
// carry exactly that many components, each normalized to [0,1].
const (
	FaceVectorDim        = 128
	FingerprintVectorDim = 96
)

func (t BiometricType) Valid() bool {
	return t == TypeFingerprint || t == TypeFace
}

// VectorDim returns the fixed feature-vector length for the type, or 0 for an
// unknown type.
func (t BiometricType) VectorDim() int {
	switch t {
	case TypeFace:
		return FaceVectorDim
	case TypeFingerprint:
		return FingerprintVectorDim
	default:
		return 0
	}
}

// BiometricTemplate is one enrolled biometric sample. Templates are created by
// enrollment, deactivated on request or superseding enrollment, and never
// mutated or hard-deleted otherwise.
type BiometricTemplate struct {
	ID          uuid.UUID     `json:"id"`
	WorkerID    uuid.UUID     `json:"worker_id"`
	CompanyID   uuid.UUID     `json:"-"`
	Type        BiometricType `json:"type"`
	Payload     []byte        `json:"-"`
	Vector      []float64     `json:"-"`
	Quality     float64       `json:"quality"`
	DeviceID    string        `json:"device_id"`
	AlgorithmID string        `json:"algorithm_id"`
	CapturedAt  time.Time     `json:"captured_at"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Validate enforces the template invariants before any write: a known type,
// the type's fixed vector length, and a quality score in [0,100].
func (t *BiometricTemplate) Validate() error {
	if !t.Type.Valid() {
		return ErrValidationFailed.WithError(fmt.Errorf("unknown biometric type %q", t.Type))
	}
	if t.WorkerID == uuid.Nil {
		return ErrValidationFailed.WithError(errors.New("worker_id is required"))
	}
	if want := t.Type.VectorDim(); len(t.Vector) != want {
		return ErrValidationFailed.WithError(
			fmt.Errorf("feature vector for %s must have %d components, got %d", t.Type, want, len(t.Vector)))
	}
	if t.Quality < 0 || t.Quality > 100 {
		return ErrValidationFailed.WithError(
			fmt.Errorf("quality score must be in [0,100], got %.2f", t.Quality))
	}
	return nil
}
