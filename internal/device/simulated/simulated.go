// Package simulated is an in-memory authenticator for development and tests.
// It keeps private keys in process memory, which is exactly what a real
// device-bound credential never does; the point is to exercise the protocol,
// not to be secure.
package simulated

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/crewforge/checkpoint/internal/device"
)

var (
	ErrUnknownCredential = errors.New("no usable credential on this device")
	ErrBadSignature      = errors.New("signature does not verify")
)

// Authenticator holds ed25519 key pairs keyed by credential id, simulating
// one physical device.
type Authenticator struct {
	mu        sync.Mutex
	keys      map[string]ed25519.PrivateKey
	platform  string
	available bool
}

func New(platform string) *Authenticator {
	return &Authenticator{
		keys:      make(map[string]ed25519.PrivateKey),
		platform:  platform,
		available: true,
	}
}

// SetAvailable toggles the advertised protocol support, for capability tests.
func (a *Authenticator) SetAvailable(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.available = v
}

func (a *Authenticator) Available(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.available, nil
}

func (a *Authenticator) CreateCredential(ctx context.Context, challenge device.Challenge) (*device.CreatedCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()

	a.mu.Lock()
	a.keys[id] = priv
	a.mu.Unlock()

	return &device.CreatedCredential{
		CredentialID: id,
		PublicKey:    pub,
		Platform:     a.platform,
	}, nil
}

// Assert signs the challenge with the first allowed credential this device
// actually holds, mirroring how a platform authenticator picks from the
// allow-list.
func (a *Authenticator) Assert(ctx context.Context, challenge device.Challenge, credentialIDs []string) (*device.Assertion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range credentialIDs {
		priv, ok := a.keys[id]
		if !ok {
			continue
		}
		return &device.Assertion{
			CredentialID: id,
			Signature:    ed25519.Sign(priv, challenge),
		}, nil
	}

	return nil, ErrUnknownCredential
}

func (a *Authenticator) VerifySignature(assertion *device.Assertion, challenge device.Challenge, publicKey []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return ErrBadSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), challenge, assertion.Signature) {
		return ErrBadSignature
	}
	return nil
}

var _ device.Authenticator = (*Authenticator)(nil)
