package types

import "time"

// Identity is a locally-owned long-term identity: a registration id, an
// Ed25519 signing keypair, an X25519 exchange keypair, and the ordered
// one-time and signed pre-keys generated for X3DH bootstrap.
//
// Identity is created once per user and mutated only by consumption of a
// one-time pre-key (see OneTimePreKeys). Each one-time pre-key id is
// consumed at most once.
type Identity struct {
	RegistrationID RegistrationID `json:"registration_id"`

	SigningPublic  Ed25519Public  `json:"signing_public"`
	SigningPrivate Ed25519Private `json:"signing_private"`

	ExchangePublic  X25519Public  `json:"exchange_public"`
	ExchangePrivate X25519Private `json:"exchange_private"`

	OneTimePreKeys []OneTimePreKeyPair `json:"one_time_pre_keys"`
	SignedPreKeys  []SignedPreKeyPair  `json:"signed_pre_keys"`

	CreatedAt time.Time `json:"created_at"`
}

// RemoteIdentity is the peer's published identity material: its Ed25519
// signing public key, its X25519 exchange public key, and the Ed25519
// signature of the serialized exchange key under the signing key.
//
// A RemoteIdentity must have its signature verified before it is admitted
// into a session (see identity.VerifyRemoteIdentity).
type RemoteIdentity struct {
	SigningKey     Ed25519Public  `json:"signing_key"`
	ExchangeKey    X25519Public   `json:"exchange_key"`
	Signature      []byte         `json:"signature"`
	CreatedAt      time.Time      `json:"created_at"`
	RegistrationID RegistrationID `json:"registration_id"`
}

// CurrentSignedPreKey returns the identity's currently-active (most recently
// appended) signed pre-key pair, or false if none exist.
func (id Identity) CurrentSignedPreKey() (SignedPreKeyPair, bool) {
	if len(id.SignedPreKeys) == 0 {
		return SignedPreKeyPair{}, false
	}
	return id.SignedPreKeys[len(id.SignedPreKeys)-1], true
}

// FindSignedPreKey looks up a signed pre-key pair by id.
func (id Identity) FindSignedPreKey(want SignedPreKeyID) (SignedPreKeyPair, bool) {
	for _, spk := range id.SignedPreKeys {
		if spk.ID == want {
			return spk, true
		}
	}
	return SignedPreKeyPair{}, false
}
