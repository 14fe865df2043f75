package rekognition

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/domain"
)

type fakeDetectAPI struct {
	output *rekognition.DetectFacesOutput
	err    error
}

func (f *fakeDetectAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	return f.output, f.err
}

func float32Ptr(v float32) *float32 { return &v }

func singleFace(confidence float32) types.FaceDetail {
	return types.FaceDetail{
		Confidence: float32Ptr(confidence),
		BoundingBox: &types.BoundingBox{
			Left:   float32Ptr(0.2),
			Top:    float32Ptr(0.1),
			Width:  float32Ptr(0.5),
			Height: float32Ptr(0.6),
		},
		Landmarks: []types.Landmark{
			{Type: types.LandmarkTypeEyeLeft, X: float32Ptr(0.35), Y: float32Ptr(0.3)},
			{Type: types.LandmarkTypeEyeRight, X: float32Ptr(0.55), Y: float32Ptr(0.3)},
			{Type: types.LandmarkTypeNose, X: float32Ptr(0.45), Y: float32Ptr(0.45)},
		},
		Pose: &types.Pose{
			Pitch: float32Ptr(2.5),
			Roll:  float32Ptr(-1.0),
			Yaw:   float32Ptr(4.0),
		},
		Quality: &types.ImageQuality{
			Brightness: float32Ptr(80),
			Sharpness:  float32Ptr(90),
		},
	}
}

func newTestProvider(api detectAPI) *Provider {
	cfg := DefaultConfig("us-east-1")
	return &Provider{
		client: &Client{api: api, config: cfg},
		config: cfg,
	}
}

func TestProvider_CaptureSample_Success(t *testing.T) {
	api := &fakeDetectAPI{
		output: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{singleFace(99)},
		},
	}
	p := newTestProvider(api)

	sample, err := p.CaptureSample(context.Background(), capture.Request{
		Type:  domain.TypeFace,
		Frame: []byte("jpeg bytes"),
	})

	require.NoError(t, err)
	assert.Len(t, sample.Vector, domain.FaceVectorDim)
	for _, v := range sample.Vector {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.GreaterOrEqual(t, sample.Quality, 0.0)
	assert.LessOrEqual(t, sample.Quality, 100.0)
	assert.Equal(t, algorithmID, sample.AlgorithmID)
}

func TestProvider_CaptureSample_NoFace(t *testing.T) {
	api := &fakeDetectAPI{output: &rekognition.DetectFacesOutput{}}
	p := newTestProvider(api)

	_, err := p.CaptureSample(context.Background(), capture.Request{
		Type:  domain.TypeFace,
		Frame: []byte("jpeg bytes"),
	})

	assert.ErrorIs(t, err, ErrNoFaceDetected)
}

func TestProvider_CaptureSample_MultipleFaces(t *testing.T) {
	api := &fakeDetectAPI{
		output: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{singleFace(99), singleFace(97)},
		},
	}
	p := newTestProvider(api)

	_, err := p.CaptureSample(context.Background(), capture.Request{
		Type:  domain.TypeFace,
		Frame: []byte("jpeg bytes"),
	})

	assert.ErrorIs(t, err, ErrMultipleFaces)
}

func TestProvider_CaptureSample_LowConfidence(t *testing.T) {
	api := &fakeDetectAPI{
		output: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{singleFace(50)},
		},
	}
	p := newTestProvider(api)

	_, err := p.CaptureSample(context.Background(), capture.Request{
		Type:  domain.TypeFace,
		Frame: []byte("jpeg bytes"),
	})

	assert.ErrorIs(t, err, ErrLowConfidence)
}

func TestProvider_CaptureSample_MissingFrame(t *testing.T) {
	p := newTestProvider(&fakeDetectAPI{})

	_, err := p.CaptureSample(context.Background(), capture.Request{Type: domain.TypeFace})

	assert.ErrorIs(t, err, ErrMissingFrame)
}

func TestProvider_CaptureSample_FingerprintUnsupported(t *testing.T) {
	p := newTestProvider(&fakeDetectAPI{})

	_, err := p.CaptureSample(context.Background(), capture.Request{
		Type:  domain.TypeFingerprint,
		Frame: []byte("frame"),
	})

	assert.ErrorIs(t, err, domain.ErrDeviceUnsupported)
}

func TestProvider_Capabilities(t *testing.T) {
	p := newTestProvider(&fakeDetectAPI{})

	caps, err := p.Capabilities(context.Background())
	require.NoError(t, err)
	assert.True(t, caps.Face)
	assert.False(t, caps.Fingerprint)
}
