package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBiometricTemplate_Validate(t *testing.T) {
	workerID := uuid.New()

	tests := []struct {
		name     string
		template BiometricTemplate
		wantErr  bool
	}{
		{
			name: "valid face template",
			template: BiometricTemplate{
				WorkerID: workerID,
				Type:     TypeFace,
				Vector:   make([]float64, FaceVectorDim),
				Quality:  87.5,
			},
		},
		{
			name: "valid fingerprint template",
			template: BiometricTemplate{
				WorkerID: workerID,
				Type:     TypeFingerprint,
				Vector:   make([]float64, FingerprintVectorDim),
				Quality:  100,
			},
		},
		{
			name: "vector length mismatch",
			template: BiometricTemplate{
				WorkerID: workerID,
				Type:     TypeFace,
				Vector:   make([]float64, FingerprintVectorDim),
				Quality:  90,
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			template: BiometricTemplate{
				WorkerID: workerID,
				Type:     BiometricType("iris"),
				Vector:   make([]float64, FaceVectorDim),
				Quality:  90,
			},
			wantErr: true,
		},
		{
			name: "quality above range",
			template: BiometricTemplate{
				WorkerID: workerID,
				Type:     TypeFace,
				Vector:   make([]float64, FaceVectorDim),
				Quality:  100.1,
			},
			wantErr: true,
		},
		{
			name: "missing worker",
			template: BiometricTemplate{
				Type:    TypeFace,
				Vector:  make([]float64, FaceVectorDim),
				Quality: 90,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBiometricType_VectorDim(t *testing.T) {
	assert.Equal(t, FaceVectorDim, TypeFace.VectorDim())
	assert.Equal(t, FingerprintVectorDim, TypeFingerprint.VectorDim())
	assert.Zero(t, BiometricType("iris").VectorDim())
}

func TestEnrollmentSession_Steps(t *testing.T) {
	s := NewEnrollmentSession(uuid.New(), TypeFace, ModeCrossDevice)

	wantOrder := []StepName{StepDeviceCheck, StepCapture, StepStorage, StepSelfTest}
	for i, step := range s.Steps {
		assert.Equal(t, wantOrder[i], step.Name)
		assert.Equal(t, StepPending, step.Status)
	}

	s.SetStep(StepCapture, StepFailed, "sensor timeout")
	step := s.Step(StepCapture)
	assert.Equal(t, StepFailed, step.Status)
	assert.Equal(t, "sensor timeout", step.Error)

	assert.Nil(t, s.Step(StepName("unknown")))
}
