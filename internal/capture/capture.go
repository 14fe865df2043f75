// Package capture defines the boundary to the biometric capture collaborator.
// Everything between the sensor and the feature vector is opaque to the core:
// a provider returns a fixed-length, normalized vector plus a quality score,
// and the core never looks inside the raw frames.
package capture

import (
	"context"

	"github.com/crewforge/checkpoint/internal/domain"
)

// Sample is one captured biometric reading, reduced to the representation the
// matching engine understands. Vector components are normalized to [0,1] and
// the vector length must equal the type's fixed dimension.
type Sample struct {
	Type        domain.BiometricType `json:"type"`
	Vector      []float64            `json:"vector"`
	Quality     float64              `json:"quality"`
	Payload     []byte               `json:"-"`
	AlgorithmID string               `json:"algorithm_id"`
	DeviceID    string               `json:"device_id"`
}

// Capabilities reports which biometric types the current device can capture.
type Capabilities struct {
	Fingerprint bool `json:"fingerprint"`
	Face        bool `json:"face"`
}

// Supports reports whether the requested type can be captured.
func (c Capabilities) Supports(t domain.BiometricType) bool {
	switch t {
	case domain.TypeFingerprint:
		return c.Fingerprint
	case domain.TypeFace:
		return c.Face
	default:
		return false
	}
}

// Request carries what a provider needs to produce a sample. Frame is the
// raw sensor payload when the caller supplies one (e.g. an uploaded image);
// providers that drive their own sensor may ignore it.
type Request struct {
	Type     domain.BiometricType
	Frame    []byte
	DeviceID string
}

// Provider is the capture collaborator. Capture may block for human-scale
// time while the user responds to a sensor prompt, so implementations must
// honor context cancellation. Retries are the provider's concern, never the
// core's.
type Provider interface {
	// Capabilities queries device capability flags.
	Capabilities(ctx context.Context) (Capabilities, error)

	// CaptureSample obtains one sample of the requested type. Errors are
	// surfaced to the caller verbatim as the capture layer reported them.
	CaptureSample(ctx context.Context, req Request) (*Sample, error)
}
