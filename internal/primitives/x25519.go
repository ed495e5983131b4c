package primitives

import (
	"fmt"

	"golang.org/x/crypto/curve25519"

	"ciphera/internal/domain"
)

// GenerateX25519 generates a new X25519 keypair, clamping the private key
// per RFC 7748 and returning (priv, pub).
func GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	raw, err := RandomBytes(domain.X25519KeySize)
	if err != nil {
		return priv, pub, fmt.Errorf("primitives: generate x25519 private key: %w", err)
	}
	copy(priv[:], raw)
	ClampX25519PrivateKey(&priv)

	pubBytes, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return priv, pub, fmt.Errorf("primitives: compute x25519 public key: %w", err)
	}
	copy(pub[:], pubBytes)
	return priv, pub, nil
}

// DH performs a Curve25519 Diffie-Hellman between priv and pub, returning
// a 32-byte shared secret. No clamping is performed beyond what priv
// already carries.
func DH(priv domain.X25519Private, pub domain.X25519Public) ([32]byte, error) {
	var out [32]byte
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, fmt.Errorf("primitives: x25519 dh: %w", err)
	}
	copy(out[:], secret)
	return out, nil
}

// ClampX25519PrivateKey applies RFC 7748 clamping to a 32-byte scalar in place.
func ClampX25519PrivateKey(k *domain.X25519Private) {
	kb := (*k)[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
