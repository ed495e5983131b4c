package commands

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ciphera/internal/domain"
	"ciphera/internal/store"
)

// saveIdentity seals id under passphrase and writes it to identityPath.
func saveIdentity(id domain.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	sealed, err := store.Seal(passphrase, raw)
	if err != nil {
		return fmt.Errorf("seal identity: %w", err)
	}
	if err := os.WriteFile(identityPath(), sealed, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// loadIdentity reads and unseals the identity at identityPath under passphrase.
func loadIdentity() (domain.Identity, error) {
	var id domain.Identity

	sealed, err := os.ReadFile(identityPath())
	if errors.Is(err, os.ErrNotExist) {
		return id, fmt.Errorf("no identity at %s; run 'ciphera init' first", identityPath())
	}
	if err != nil {
		return id, fmt.Errorf("read identity: %w", err)
	}

	raw, err := store.Open(passphrase, sealed)
	if err != nil {
		return id, fmt.Errorf("unseal identity: %w", err)
	}
	if err := json.Unmarshal(raw, &id); err != nil {
		return id, fmt.Errorf("unmarshal identity: %w", err)
	}
	return id, nil
}

// nextRegistrationID draws a random registration id for a freshly
// initialized identity.
func nextRegistrationID() domain.RegistrationID {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	id := binary.BigEndian.Uint32(b[:])
	if id == 0 {
		id = 1
	}
	return domain.RegistrationID(id)
}
