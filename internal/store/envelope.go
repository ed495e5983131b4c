package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// envelopeVersion is the on-disk format version for a passphrase-sealed
// session blob.
const envelopeVersion = 1

// ErrWrongPassphrase means the passphrase was incorrect or the sealed
// envelope was corrupted or tampered with.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted envelope")

// argon2idParams are the tunables for KEK derivation, chosen to match the
// teacher's interactive-use defaults (time=1, memory=64MiB, threads=8).
type argon2idParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

func defaultArgon2idParams() argon2idParams {
	return argon2idParams{Time: 1, Memory: 1 << 16, Threads: 8}
}

// envelope is the serialized structure holding a ChaCha20-Poly1305-sealed
// blob plus the Argon2id parameters and salt needed to re-derive its key.
type envelope struct {
	V       int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
	Cipher  []byte `json:"cipher"`
}

// Seal derives a key-encryption key from passphrase via Argon2id and seals
// raw under ChaCha20-Poly1305, returning the serialized envelope.
func Seal(passphrase string, raw []byte) ([]byte, error) {
	params := defaultArgon2idParams()

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("store: generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(passphrase), salt, params.Time, params.Memory, params.Threads, chacha20poly1305.KeySize)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("store: build aead: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("store: generate nonce: %w", err)
	}
	ct := aead.Seal(nil, nonce, raw, nil)

	return json.Marshal(envelope{
		V: envelopeVersion, Salt: salt, Nonce: nonce,
		Time: params.Time, Memory: params.Memory, Threads: params.Threads,
		Cipher: ct,
	})
}

// Open reverses Seal, returning ErrWrongPassphrase if the passphrase is
// wrong or the envelope was tampered with.
func Open(passphrase string, sealed []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("store: decode envelope: %w", err)
	}
	if env.V != envelopeVersion {
		return nil, fmt.Errorf("store: unsupported envelope version %d", env.V)
	}

	key := argon2.IDKey([]byte(passphrase), env.Salt, env.Time, env.Memory, env.Threads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("store: build aead: %w", err)
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
