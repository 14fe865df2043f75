package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationMethod names which of the two authentication paths produced a
// result.
type VerificationMethod string

const (
	// MethodDeviceBound is the credential challenge/response path.
	MethodDeviceBound VerificationMethod = "device_bound"
	// MethodCrossDevice is the stored-template matching path.
	MethodCrossDevice VerificationMethod = "cross_device"
)

func (m VerificationMethod) Valid() bool {
	return m == MethodDeviceBound || m == MethodCrossDevice
}

// VerificationResult is the unified outcome of either verification path.
// A result exists only when verification actually ran; enrollment-missing,
// capture and capability failures surface as distinct errors instead, so a
// first-time user is never reported as a failed match.
type VerificationResult struct {
	ID         uuid.UUID          `json:"id"`
	WorkerID   uuid.UUID          `json:"worker_id"`
	Method     VerificationMethod `json:"method"`
	Type       BiometricType      `json:"type"`
	Verified   bool               `json:"verified"`
	Score      float64            `json:"match_score,omitempty"`
	MatchedID  *uuid.UUID         `json:"matched_template_id,omitempty"`
	VerifiedAt time.Time          `json:"verified_at"`
}
