// Package rekognition implements the capture seam on top of AWS Rekognition
// face detection. Rekognition does not expose raw embeddings, so the provider
// derives a fixed-length feature vector from the geometry it does return:
// facial landmarks relative to the bounding box, head pose and image quality.
// The vector is deterministic for a given analysis and respects the capture
// contract (fixed length, components in [0,1]).
package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/domain"
)

const algorithmID = "rekognition-detect-v1"

// Provider implements capture.Provider for face capture. Fingerprint capture
// is not available through Rekognition, so capability flags advertise face
// only.
type Provider struct {
	client *Client
	config Config
}

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client, config: cfg}, nil
}

func (p *Provider) Capabilities(ctx context.Context) (capture.Capabilities, error) {
	if err := ctx.Err(); err != nil {
		return capture.Capabilities{}, err
	}
	return capture.Capabilities{Face: true}, nil
}

func (p *Provider) CaptureSample(ctx context.Context, req capture.Request) (*capture.Sample, error) {
	if req.Type != domain.TypeFace {
		return nil, domain.ErrDeviceUnsupported
	}
	if len(req.Frame) == 0 {
		return nil, ErrMissingFrame
	}

	faces, err := p.client.DetectFaces(ctx, req.Frame)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}
	if len(faces) > 1 {
		return nil, ErrMultipleFaces
	}

	face := faces[0]
	if face.Confidence != nil && float64(*face.Confidence) < p.config.MinConfidence {
		return nil, ErrLowConfidence
	}

	return &capture.Sample{
		Type:        domain.TypeFace,
		Vector:      featureVector(face),
		Quality:     qualityScore(face),
		Payload:     req.Frame,
		AlgorithmID: algorithmID,
		DeviceID:    req.DeviceID,
	}, nil
}

// featureVector flattens the face geometry into the face vector dimension.
// Landmark coordinates are expressed relative to the bounding box so the
// vector is stable under crops and scaling; pose angles and quality fill the
// tail, and the sequence repeats cyclically to reach the fixed length.
func featureVector(face types.FaceDetail) []float64 {
	var base []float64

	box := face.BoundingBox
	for _, lm := range face.Landmarks {
		base = append(base, relative(lm.X, boxLeft(box), boxWidth(box)))
		base = append(base, relative(lm.Y, boxTop(box), boxHeight(box)))
	}

	if pose := face.Pose; pose != nil {
		base = append(base, angle01(pose.Pitch), angle01(pose.Roll), angle01(pose.Yaw))
	}
	if q := face.Quality; q != nil {
		base = append(base, clamp01(float64(deref(q.Brightness))/100))
		base = append(base, clamp01(float64(deref(q.Sharpness))/100))
	}
	base = append(base, clamp01(float64(deref(face.Confidence))/100))

	vector := make([]float64, domain.FaceVectorDim)
	for i := range vector {
		vector[i] = base[i%len(base)]
	}
	return vector
}

// qualityScore maps Rekognition's brightness/sharpness/confidence onto the
// template quality range [0,100].
func qualityScore(face types.FaceDetail) float64 {
	score := float64(deref(face.Confidence))
	if q := face.Quality; q != nil {
		score = (score + float64(deref(q.Brightness)) + float64(deref(q.Sharpness))) / 3
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func relative(v *float32, origin, extent float64) float64 {
	if v == nil || extent == 0 {
		return 0
	}
	return clamp01((float64(*v) - origin) / extent)
}

func boxLeft(b *types.BoundingBox) float64 {
	if b == nil {
		return 0
	}
	return float64(deref(b.Left))
}

func boxTop(b *types.BoundingBox) float64 {
	if b == nil {
		return 0
	}
	return float64(deref(b.Top))
}

func boxWidth(b *types.BoundingBox) float64 {
	if b == nil {
		return 1
	}
	if w := float64(deref(b.Width)); w > 0 {
		return w
	}
	return 1
}

func boxHeight(b *types.BoundingBox) float64 {
	if b == nil {
		return 1
	}
	if h := float64(deref(b.Height)); h > 0 {
		return h
	}
	return 1
}

// angle01 maps a pose angle in [-180,180] onto [0,1].
func angle01(v *float32) float64 {
	return clamp01((float64(deref(v)) + 180) / 360)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func deref(v *float32) float32 {
	if v == nil {
		return 0
	}
	return *v
}

var _ capture.Provider = (*Provider)(nil)
