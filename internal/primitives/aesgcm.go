package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"ciphera/internal/domain"
	"ciphera/internal/domain/types"
)

// SealAESGCM encrypts plaintext with AES-256-GCM under key, authenticating
// aad, and returns nonce||ciphertext||tag.
func SealAESGCM(key domain.AESKey, aad, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, err := RandomBytes(types.GCMNonceSize)
	if err != nil {
		return nil, fmt.Errorf("primitives: aes-gcm nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// OpenAESGCM decrypts a nonce||ciphertext||tag blob produced by SealAESGCM,
// authenticating aad.
func OpenAESGCM(key domain.AESKey, aad, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < types.GCMNonceSize {
		return nil, fmt.Errorf("primitives: aes-gcm ciphertext too short")
	}

	nonce, ct := sealed[:types.GCMNonceSize], sealed[types.GCMNonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, fmt.Errorf("primitives: aes-gcm open: %w", err)
	}
	return plaintext, nil
}

// SealAESGCMWithNonce encrypts plaintext with AES-256-GCM under key and an
// explicit 12-byte nonce, authenticating aad, returning ciphertext||tag.
// Used where the nonce is derived deterministically from unique keying
// material rather than drawn from the random source (see the symmetric
// ratchet's per-message key derivation).
func SealAESGCMWithNonce(key domain.AESKey, nonce, aad, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != types.GCMNonceSize {
		return nil, fmt.Errorf("primitives: aes-gcm nonce must be %d bytes, got %d", types.GCMNonceSize, len(nonce))
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// OpenAESGCMWithNonce decrypts a ciphertext||tag blob produced by
// SealAESGCMWithNonce under the same explicit nonce.
func OpenAESGCMWithNonce(key domain.AESKey, nonce, aad, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != types.GCMNonceSize {
		return nil, fmt.Errorf("primitives: aes-gcm nonce must be %d bytes, got %d", types.GCMNonceSize, len(nonce))
	}
	plaintext, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("primitives: aes-gcm open: %w", err)
	}
	return plaintext, nil
}

func newGCM(key domain.AESKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Slice())
	if err != nil {
		return nil, fmt.Errorf("primitives: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, types.GCMTagSize)
	if err != nil {
		return nil, fmt.Errorf("primitives: aes-gcm: %w", err)
	}
	return gcm, nil
}
