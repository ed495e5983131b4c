package types

import "time"

// ChainKey is a 256-bit HMAC-keyed secret with a monotonically increasing
// counter, starting at 0. Advancing it (CK' = HMAC(CK, 0x02)) steps the
// counter by one and yields a message-key precursor
// (MK_raw = HMAC(CK, 0x01)).
type ChainKey struct {
	Key     HMACKey `json:"key"`
	Counter uint32  `json:"counter"`
}

// RootKey is the session's 256-bit HMAC-keyed secret, updated on every DH
// ratchet rotation and used as the HKDF salt for deriving the next
// (root key, chain key) pair.
type RootKey HMACKey

// Slice returns the key as a []byte.
func (k RootKey) Slice() []byte { return k[:] }

// DHStep captures one DH ratchet epoch: the peer's ratchet public key and
// its thumbprint (used as the step's id), an optional sending chain, an
// optional receiving chain, and the last counter successfully decrypted
// on the receiving chain (initially -1, meaning none).
//
// A step's lifetime ends when it is evicted from the session's step ring.
type DHStep struct {
	StepID               StepID       `json:"step_id"`
	PeerRatchetKey       X25519Public `json:"peer_ratchet_key"`
	SendingChain         *ChainKey    `json:"sending_chain,omitempty"`
	ReceivingChain       *ChainKey    `json:"receiving_chain,omitempty"`
	LastDecryptedCounter int64        `json:"last_decrypted_counter"`
}

// SkippedMessageKey is one entry in the skipped-key cache: a message key
// precursor (MK_raw, pre-HKDF-expansion) cached under a (stepId, counter)
// composite key, plus the insertion time used for TTL and
// oldest-first eviction.
type SkippedMessageKey struct {
	StepID    StepID    `json:"step_id"`
	Counter   uint32    `json:"counter"`
	KeyBytes  []byte    `json:"key_bytes"`
	StoredAt  time.Time `json:"stored_at"`
}

// SkippedStats summarizes the skipped-key cache's occupancy, returned by
// the session façade's Stats operation.
type SkippedStats struct {
	TotalSkippedKeys int `json:"total_skipped_keys"`
	TrackedSteps     int `json:"tracked_steps"`
}

// SessionState is the serializable core of a session's ratchet state: the
// active local ratchet keypair, the current root key, the DH counter
// (incremented on each local ratchet key rotation and on each newly
// admitted peer ratchet key), and the bounded step ring.
// The session-global skipped-key cache is persisted alongside it by the
// session façade, not embedded here, since it may be backed by an
// external store (see domain.SkippedKeyCache).
type SessionState struct {
	RatchetPrivate X25519Private `json:"ratchet_private"`
	RatchetPublic  X25519Public  `json:"ratchet_public"`
	RootKey        RootKey       `json:"root_key"`
	DHCounter      uint32        `json:"dh_counter"`
	Steps          []DHStep      `json:"steps"`
}
