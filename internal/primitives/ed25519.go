package primitives

import (
	"crypto/ed25519"
	"fmt"

	"ciphera/internal/domain"
)

// GenerateEd25519 returns a new Ed25519 signing key pair, sourced from the
// process-wide crypto engine's random bytes rather than crypto/rand
// directly, so SetEngine can swap the source for tests.
func GenerateEd25519() (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	seed, err := RandomBytes(ed25519.SeedSize)
	if err != nil {
		return priv, pub, fmt.Errorf("primitives: generate ed25519 seed: %w", err)
	}
	sk := ed25519.NewKeyFromSeed(seed)
	pk := sk.Public().(ed25519.PublicKey)

	copy(priv[:], sk)
	copy(pub[:], pk)
	return priv, pub, nil
}

// SignEd25519 signs msg with priv and returns the 64-byte signature.
func SignEd25519(priv domain.Ed25519Private, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv.Slice()), msg)
}

// VerifyEd25519 reports whether sig is a valid signature over msg under pub.
func VerifyEd25519(pub domain.Ed25519Public, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub.Slice()), msg, sig)
}
