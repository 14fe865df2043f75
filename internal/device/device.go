// Package device defines the boundary to the device credential collaborator:
// creation of non-exportable key pairs and challenge/response assertions. The
// cryptographic contract (how signatures are produced and checked) belongs to
// the authenticator implementation, not to the core; the core only decides
// which credentials to challenge and stores public halves.
package device

import "context"

// Challenge is the random value a device must sign to prove possession of a
// credential's private key.
type Challenge []byte

// CreatedCredential is what the device hands back after creating a key pair.
// The private key never leaves the device.
type CreatedCredential struct {
	CredentialID string
	PublicKey    []byte
	Platform     string
}

// Assertion is the device's response to a challenge.
type Assertion struct {
	CredentialID string
	Signature    []byte
}

// Authenticator is the device credential collaborator. Create and Assert may
// block while the user responds to a platform prompt, so both must honor
// context cancellation.
type Authenticator interface {
	// Available reports whether the device supports the credential protocol.
	Available(ctx context.Context) (bool, error)

	// CreateCredential asks the device to mint a new key pair bound to it.
	CreateCredential(ctx context.Context, challenge Challenge) (*CreatedCredential, error)

	// Assert asks the device to sign the challenge with one of the allowed
	// credentials. Which credential answers is the device's choice.
	Assert(ctx context.Context, challenge Challenge, credentialIDs []string) (*Assertion, error)

	// VerifySignature validates an assertion against a stored public key.
	// Validation semantics are the authenticator protocol's own contract.
	VerifySignature(assertion *Assertion, challenge Challenge, publicKey []byte) error
}
