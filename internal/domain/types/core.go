package types

// Fingerprint is the hex-encoded SHA-256 thumbprint of a public key,
// presented to users for out-of-band verification.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// StepID is the hex-encoded SHA-256 thumbprint of a DH ratchet public key
// (see primitives.Thumbprint), used to index the DH step ring and the
// skipped-key cache.
type StepID string

// String returns the string form of the step id.
func (id StepID) String() string { return string(id) }

// SignedPreKeyID addresses one of an identity's signed pre-keys.
type SignedPreKeyID uint32

// OneTimePreKeyID addresses one of an identity's one-time pre-keys.
type OneTimePreKeyID uint32

// RegistrationID identifies a locally-owned identity.
type RegistrationID uint32
