package types

// OneTimePreKeyPair is the full (private+public) one-time pre-key held
// locally by an Identity. Invariant: an id is consumed (removed from the
// identity's list) at most once.
type OneTimePreKeyPair struct {
	ID   OneTimePreKeyID `json:"id"`
	Priv X25519Private   `json:"priv"`
	Pub  X25519Public    `json:"pub"`
}

// OneTimePreKeyPublic is only the public half, as carried on the wire.
type OneTimePreKeyPublic struct {
	ID  OneTimePreKeyID `json:"id"`
	Pub X25519Public    `json:"pub"`
}

// SignedPreKeyPair is the full (private+public) signed pre-key held
// locally, with its Ed25519 signature over the raw public key bytes.
type SignedPreKeyPair struct {
	ID   SignedPreKeyID `json:"id"`
	Priv X25519Private  `json:"priv"`
	Pub  X25519Public   `json:"pub"`
	Sig  []byte         `json:"sig"`
}

// SignedPreKeyPublic is the public half plus signature, as carried on the
// wire (PreKeySigned in the codec).
type SignedPreKeyPublic struct {
	ID  SignedPreKeyID `json:"id"`
	Pub X25519Public   `json:"pub"`
	Sig []byte         `json:"sig"`
}

// PreKeyBundle is the material a responder publishes so an initiator can
// run X3DH: its registration id, its RemoteIdentity block, a required
// signed pre-key, and an optional one-time pre-key.
//
// Invariant: the signed pre-key signature verifies against the bundle's
// identity signing key.
type PreKeyBundle struct {
	RegistrationID RegistrationID      `json:"registration_id"`
	Identity       RemoteIdentity      `json:"identity"`
	OneTime        *OneTimePreKeyPublic `json:"one_time,omitempty"`
	SignedPreKey   SignedPreKeyPublic  `json:"signed_pre_key"`
}
