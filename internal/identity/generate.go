package identity

import (
	"fmt"
	"time"

	"ciphera/internal/domain"
	"ciphera/internal/primitives"
)

// Generate creates a new Identity with registrationID, nOneTime one-time
// pre-keys, and nSigned signed pre-keys (the last of which is the
// identity's current signed pre-key; see domain.Identity.CurrentSignedPreKey).
func Generate(registrationID domain.RegistrationID, nOneTime, nSigned int) (domain.Identity, error) {
	var id domain.Identity

	signingPriv, signingPub, err := primitives.GenerateEd25519()
	if err != nil {
		return id, fmt.Errorf("identity: generate signing key: %w", err)
	}
	exchangePriv, exchangePub, err := primitives.GenerateX25519()
	if err != nil {
		return id, fmt.Errorf("identity: generate exchange key: %w", err)
	}

	id = domain.Identity{
		RegistrationID:  registrationID,
		SigningPublic:   signingPub,
		SigningPrivate:  signingPriv,
		ExchangePublic:  exchangePub,
		ExchangePrivate: exchangePriv,
		CreatedAt:       time.Now().UTC(),
	}

	if err := AddOneTimePreKeys(&id, nOneTime); err != nil {
		return domain.Identity{}, err
	}
	if err := AddSignedPreKeys(&id, nSigned); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// AddOneTimePreKeys generates n fresh one-time pre-keys and appends them to
// id, continuing the id sequence from the highest existing id.
func AddOneTimePreKeys(id *domain.Identity, n int) error {
	nextID := domain.OneTimePreKeyID(1)
	for _, existing := range id.OneTimePreKeys {
		if existing.ID >= nextID {
			nextID = existing.ID + 1
		}
	}

	for i := 0; i < n; i++ {
		priv, pub, err := primitives.GenerateX25519()
		if err != nil {
			return fmt.Errorf("identity: generate one-time pre-key: %w", err)
		}
		id.OneTimePreKeys = append(id.OneTimePreKeys, domain.OneTimePreKeyPair{
			ID:   nextID,
			Priv: priv,
			Pub:  pub,
		})
		nextID++
	}
	return nil
}

// AddSignedPreKeys generates n fresh signed pre-keys, each signed with id's
// Ed25519 signing key, and appends them to id. The last appended entry
// becomes the identity's current signed pre-key.
func AddSignedPreKeys(id *domain.Identity, n int) error {
	nextID := domain.SignedPreKeyID(1)
	for _, existing := range id.SignedPreKeys {
		if existing.ID >= nextID {
			nextID = existing.ID + 1
		}
	}

	for i := 0; i < n; i++ {
		priv, pub, err := primitives.GenerateX25519()
		if err != nil {
			return fmt.Errorf("identity: generate signed pre-key: %w", err)
		}
		sig := primitives.SignEd25519(id.SigningPrivate, pub.Slice())
		id.SignedPreKeys = append(id.SignedPreKeys, domain.SignedPreKeyPair{
			ID:   nextID,
			Priv: priv,
			Pub:  pub,
			Sig:  sig,
		})
		nextID++
	}
	return nil
}
