package types

import "fmt"

// Key sizes, fixed throughout the protocol.
const (
	X25519KeySize   = 32
	Ed25519PubSize  = 32
	Ed25519PrivSize = 64
	HMACKeySize     = 32
	AESKeySize      = 32
	GCMNonceSize    = 12
	GCMTagSize      = 16
)

// X25519Public is a Curve25519 Diffie-Hellman public key.
type X25519Public [X25519KeySize]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 Diffie-Hellman private key.
type X25519Private [X25519KeySize]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [Ed25519PubSize]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key (seed+public form, 64 bytes).
type Ed25519Private [Ed25519PrivSize]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// HMACKey is a 256-bit HMAC-SHA-256 key, used by root keys and chain keys.
type HMACKey [HMACKeySize]byte

// Slice returns the key as a []byte.
func (k HMACKey) Slice() []byte { return k[:] }

// AESKey is a 256-bit AES key used for AES-256-GCM sealing.
type AESKey [AESKeySize]byte

// Slice returns the key as a []byte.
func (k AESKey) Slice() []byte { return k[:] }

func MustX25519Public(b []byte) X25519Public {
	if len(b) != X25519KeySize {
		panic(fmt.Errorf("x25519 public: want %d bytes, got %d", X25519KeySize, len(b)))
	}
	var out X25519Public
	copy(out[:], b)
	return out
}

func MustX25519Private(b []byte) X25519Private {
	if len(b) != X25519KeySize {
		panic(fmt.Errorf("x25519 private: want %d bytes, got %d", X25519KeySize, len(b)))
	}
	var out X25519Private
	copy(out[:], b)
	return out
}

func MustEd25519Public(b []byte) Ed25519Public {
	if len(b) != Ed25519PubSize {
		panic(fmt.Errorf("ed25519 public: want %d bytes, got %d", Ed25519PubSize, len(b)))
	}
	var out Ed25519Public
	copy(out[:], b)
	return out
}

func MustEd25519Private(b []byte) Ed25519Private {
	if len(b) != Ed25519PrivSize {
		panic(fmt.Errorf("ed25519 private: want %d bytes, got %d", Ed25519PrivSize, len(b)))
	}
	var out Ed25519Private
	copy(out[:], b)
	return out
}

func MustHMACKey(b []byte) HMACKey {
	if len(b) != HMACKeySize {
		panic(fmt.Errorf("hmac key: want %d bytes, got %d", HMACKeySize, len(b)))
	}
	var out HMACKey
	copy(out[:], b)
	return out
}

func MustAESKey(b []byte) AESKey {
	if len(b) != AESKeySize {
		panic(fmt.Errorf("aes key: want %d bytes, got %d", AESKeySize, len(b)))
	}
	var out AESKey
	copy(out[:], b)
	return out
}
