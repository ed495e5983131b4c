package session

import (
	"encoding/json"
	"fmt"

	"ciphera/internal/config"
	"ciphera/internal/domain"
	"ciphera/internal/ratchet"
)

// persistedPending mirrors pendingPreKey for the serialized blob.
type persistedPending struct {
	PreKeyID       *domain.OneTimePreKeyID `json:"pre_key_id,omitempty"`
	PreKeySignedID domain.SignedPreKeyID   `json:"pre_key_signed_id"`
}

// persistedSession is the opaque blob Serialize produces: the ratchet's
// SessionState, a snapshot of its skipped-key cache, and (for an initiator
// session that has not yet sent its first message) the X3DH bootstrap
// material still owed to the peer in that first PreKeyMessage.
type persistedSession struct {
	State   domain.SessionState        `json:"state"`
	Skipped []domain.SkippedMessageKey `json:"skipped"`
	Pending *persistedPending          `json:"pending,omitempty"`
}

// Serialize captures the session's ratchet state and skipped-key cache as
// an opaque byte blob, per the persistence contract: ratchet keypair, root
// key, DH counter, step ring, and skipped cache. It does not include the
// session's identity or peer identity; Restore is given those again by the
// caller, since an application typically keeps identities separately from
// per-peer session blobs.
//
// Serialize requires the session's cache to be a *ratchet.MemoryCache
// (ratchet.NewMemoryCache's default); a session built over an external
// cache such as rediscache.Cache already persists its skipped keys in that
// external store and has nothing further to snapshot here.
func (s *Session) Serialize() ([]byte, error) {
	s.encryptMu.Lock()
	defer s.encryptMu.Unlock()
	s.decryptMu.Lock()
	defer s.decryptMu.Unlock()

	mc, ok := s.ratchet.Cache.(*ratchet.MemoryCache)
	if !ok {
		return nil, fmt.Errorf("session: serialize: skipped-key cache type %T cannot be snapshotted", s.ratchet.Cache)
	}

	blob := persistedSession{
		State: domain.SessionState{
			RatchetPrivate: s.ratchet.OurPriv,
			RatchetPublic:  s.ratchet.OurPub,
			RootKey:        s.ratchet.RootKey,
			DHCounter:      s.ratchet.Counter,
			Steps:          s.ratchet.Steps,
		},
		Skipped: mc.Snapshot(),
	}
	if s.pending != nil {
		blob.Pending = &persistedPending{PreKeyID: s.pending.preKeyID, PreKeySignedID: s.pending.preKeySignedID}
	}

	out, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("session: serialize: %w", err)
	}
	return out, nil
}

// Restore reconstructs a session from a blob previously produced by
// Serialize, reattaching ownIdentity and peerIdentity (neither of which
// the blob itself carries).
func Restore(blob []byte, ownIdentity *domain.Identity, peerIdentity domain.RemoteIdentity, opts config.Options, optFns ...Option) (*Session, error) {
	var p persistedSession
	if err := json.Unmarshal(blob, &p); err != nil {
		return nil, fmt.Errorf("session: restore: decode: %w", err)
	}

	cache := ratchet.NewMemoryCache(opts.MaxSkippedKeys, opts.MaxMessageKeysPerStep, opts.SkippedKeyTTL)
	cache.Restore(p.Skipped)

	state := &ratchet.State{
		OurPriv:        p.State.RatchetPrivate,
		OurPub:         p.State.RatchetPublic,
		RootKey:        p.State.RootKey,
		Counter:        p.State.DHCounter,
		Steps:          p.State.Steps,
		Cache:          cache,
		MaxSteps:       opts.MaxRatchetSteps,
		MaxKeysPerStep: opts.MaxMessageKeysPerStep,
	}

	var pending *pendingPreKey
	if p.Pending != nil {
		pending = &pendingPreKey{preKeyID: p.Pending.PreKeyID, preKeySignedID: p.Pending.PreKeySignedID}
	}

	return newSession(ownIdentity, peerIdentity, state, opts, pending, optFns), nil
}
