// Package simulated is the development and test capture provider. It
// fabricates feature vectors instead of reading a sensor; a production
// deployment must swap in a real capture integration behind the same
// interface. The contracts still hold here: fixed vector length per type,
// components in [0,1], quality in [0,100].
package simulated

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/domain"
)

const algorithmID = "simulated-v1"

// Provider derives deterministic vectors from the request frame, falling back
// to a configured seed when no frame is supplied. The same input always
// re-captures the same sample, which makes enroll-then-verify round trips
// reproducible in tests and demos.
type Provider struct {
	seed         []byte
	capabilities capture.Capabilities
}

type Option func(*Provider)

// WithCapabilities overrides the advertised device capability flags.
func WithCapabilities(c capture.Capabilities) Option {
	return func(p *Provider) {
		p.capabilities = c
	}
}

func New(seed []byte, opts ...Option) *Provider {
	p := &Provider{
		seed:         seed,
		capabilities: capture.Capabilities{Fingerprint: true, Face: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Capabilities(ctx context.Context) (capture.Capabilities, error) {
	if err := ctx.Err(); err != nil {
		return capture.Capabilities{}, err
	}
	return p.capabilities, nil
}

func (p *Provider) CaptureSample(ctx context.Context, req capture.Request) (*capture.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.capabilities.Supports(req.Type) {
		return nil, domain.ErrDeviceUnsupported
	}

	dim := req.Type.VectorDim()
	if dim == 0 {
		return nil, domain.ErrValidationFailed
	}

	seed := p.seed
	if len(req.Frame) > 0 {
		seed = req.Frame
	}

	return &capture.Sample{
		Type:        req.Type,
		Vector:      expandSeed(seed, req.Type, dim),
		Quality:     qualityFromSeed(seed),
		Payload:     req.Frame,
		AlgorithmID: algorithmID,
		DeviceID:    req.DeviceID,
	}, nil
}

// expandSeed stretches the seed into dim components in [0,1] by chaining
// SHA-256 blocks, keyed by the biometric type so face and fingerprint vectors
// from one seed differ.
func expandSeed(seed []byte, t domain.BiometricType, dim int) []float64 {
	vector := make([]float64, dim)
	block := sha256.Sum256(append(append([]byte{}, seed...), t...))

	for i := 0; i < dim; i++ {
		if i > 0 && i%len(block) == 0 {
			block = sha256.Sum256(block[:])
		}
		vector[i] = float64(block[i%len(block)]) / 255.0
	}

	return vector
}

// qualityFromSeed yields a stable quality score in [75,100).
func qualityFromSeed(seed []byte) float64 {
	sum := sha256.Sum256(seed)
	n := binary.BigEndian.Uint16(sum[:2])
	return 75 + float64(n%2500)/100
}

var _ capture.Provider = (*Provider)(nil)
