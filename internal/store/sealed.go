package store

import (
	"fmt"

	"ciphera/internal/domain"
)

// SealedStore wraps a backing domain.SessionStore, sealing every blob with
// a passphrase-derived key (see Seal/Open) before it reaches the backend
// and opening it again on Load.
type SealedStore struct {
	backing    domain.SessionStore
	passphrase string
}

var _ domain.SessionStore = (*SealedStore)(nil)

// NewSealedStore wraps backing so every Save/Load round-trips through
// Seal/Open under passphrase.
func NewSealedStore(backing domain.SessionStore, passphrase string) *SealedStore {
	return &SealedStore{backing: backing, passphrase: passphrase}
}

// Save seals blob and forwards it to the backing store.
func (s *SealedStore) Save(peer string, blob []byte) error {
	sealed, err := Seal(s.passphrase, blob)
	if err != nil {
		return fmt.Errorf("store: seal blob for %q: %w", peer, err)
	}
	return s.backing.Save(peer, sealed)
}

// Load fetches the sealed blob from the backing store and opens it.
func (s *SealedStore) Load(peer string) ([]byte, bool, error) {
	sealed, ok, err := s.backing.Load(peer)
	if err != nil || !ok {
		return nil, ok, err
	}
	raw, err := Open(s.passphrase, sealed)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}
