// Package session is the façade an application actually talks to: it wires
// identity, X3DH, and the Double Ratchet together behind Encrypt/Decrypt,
// enforcing the per-direction ordering the concurrency model requires and
// persisting nothing on its own (see Serialize/Restore and internal/store).
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"ciphera/internal/config"
	"ciphera/internal/domain"
	"ciphera/internal/metrics"
	"ciphera/internal/primitives"
	"ciphera/internal/protoerr"
	"ciphera/internal/ratchet"
	"ciphera/internal/x3dh"
)

// Session is one end of a Double Ratchet conversation with a single peer.
// Concurrent Encrypt calls are serialized by encryptMu and concurrent
// Decrypt calls by decryptMu; the two locks are independent of each other
// (see internal/session's concurrency notes in the design ledger).
type Session struct {
	identity     *domain.Identity
	peerIdentity domain.RemoteIdentity

	ratchet *ratchet.State
	opts    config.Options

	pending *pendingPreKey // non-nil until this session's first Encrypt

	onUpdate func()
	logger   *slog.Logger

	encryptMu sync.Mutex
	decryptMu sync.Mutex
}

// pendingPreKey is the X3DH bootstrap material an initiator session must
// re-embed in its first outbound PreKeyMessage.
type pendingPreKey struct {
	preKeyID       *domain.OneTimePreKeyID
	preKeySignedID domain.SignedPreKeyID
}

// Option configures optional Session behavior at construction time.
type Option func(*Session)

// WithOnUpdate registers a callback fired after every successful Encrypt or
// Decrypt, so a persistence layer can re-snapshot the session.
func WithOnUpdate(fn func()) Option {
	return func(s *Session) { s.onUpdate = fn }
}

// WithLogger overrides the session's logger, which otherwise defaults to
// slog.Default(). Either logger is used only when opts.Debug is set.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func newSession(ownIdentity *domain.Identity, peerIdentity domain.RemoteIdentity, state *ratchet.State, opts config.Options, pending *pendingPreKey, optFns []Option) *Session {
	s := &Session{
		identity:     ownIdentity,
		peerIdentity: peerIdentity,
		ratchet:      state,
		opts:         opts,
		pending:      pending,
		logger:       slog.Default(),
	}
	for _, fn := range optFns {
		fn(s)
	}
	if !opts.Debug {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// CreateAsInitiator runs X3DH against bundle and builds the sending half of
// a fresh session. ownIdentity is not mutated; initiators never consume a
// one-time pre-key (only responders do, since the initiator merely reads
// one out of the bundle it was handed).
func CreateAsInitiator(ownIdentity domain.Identity, bundle domain.PreKeyBundle, opts config.Options, optFns ...Option) (*Session, error) {
	root, ephPriv, ephPub, err := x3dh.InitiatorRoot(ownIdentity, bundle)
	if err != nil {
		return nil, fmt.Errorf("session: create as initiator: %w", err)
	}

	cache := ratchet.NewMemoryCache(opts.MaxSkippedKeys, opts.MaxMessageKeysPerStep, opts.SkippedKeyTTL)
	state := ratchet.NewInitiatorState(root, ephPriv, ephPub, bundle.SignedPreKey.Pub, cache, opts.MaxRatchetSteps, opts.MaxMessageKeysPerStep)

	pending := &pendingPreKey{preKeySignedID: bundle.SignedPreKey.ID}
	if bundle.OneTime != nil {
		id := bundle.OneTime.ID
		pending.preKeyID = &id
	}

	s := newSession(&ownIdentity, bundle.Identity, state, opts, pending, optFns)
	s.logger.Debug("session created as initiator", "registrationId", ownIdentity.RegistrationID, "peerRegistrationId", bundle.RegistrationID)
	return s, nil
}

// CreateAsResponder completes X3DH against an inbound PreKeyMessage and
// builds the receiving half of a fresh session. ownIdentity is mutated if
// pm cites a one-time pre-key: it is consumed (removed) exactly once.
//
// The caller still owns decrypting pm.SignedMessage: CreateAsResponder only
// establishes the session, matching the external-interfaces contract that a
// PreKeyMessage is imported, then a session is created, then its nested
// message is decrypted.
func CreateAsResponder(ownIdentity *domain.Identity, pm domain.PreKeyMessage, opts config.Options, optFns ...Option) (*Session, error) {
	spk, ok := ownIdentity.FindSignedPreKey(pm.PreKeySignedID)
	if !ok {
		return nil, fmt.Errorf("session: create as responder: %w: signed pre-key id %d", protoerr.ErrUnknownPreKey, pm.PreKeySignedID)
	}

	root, err := x3dh.ResponderRoot(ownIdentity, pm.Identity, pm.PreKeySignedID, pm.PreKeyID, pm.BaseKey)
	if err != nil {
		return nil, fmt.Errorf("session: create as responder: %w", err)
	}

	cache := ratchet.NewMemoryCache(opts.MaxSkippedKeys, opts.MaxMessageKeysPerStep, opts.SkippedKeyTTL)
	state, err := ratchet.NewResponderState(root, spk.Priv, spk.Pub, pm.BaseKey, cache, opts.MaxRatchetSteps, opts.MaxMessageKeysPerStep)
	if err != nil {
		return nil, fmt.Errorf("session: create as responder: %w", err)
	}

	s := newSession(ownIdentity, pm.Identity, state, opts, nil, optFns)
	s.logger.Debug("session created as responder", "registrationId", ownIdentity.RegistrationID, "peerRegistrationId", pm.RegistrationID)
	return s, nil
}

// Encrypt seals plaintext under the session's sending chain. The very first
// message an initiator session sends is wrapped in a PreKeyMessage (the
// bootstrap information the responder needs); every subsequent message, and
// every message a responder session ever sends, is a bare MessageSigned.
func (s *Session) Encrypt(plaintext []byte) (domain.Envelope, error) {
	s.encryptMu.Lock()
	defer s.encryptMu.Unlock()

	msg, hmacKey, err := s.ratchet.Encrypt(plaintext)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("session: encrypt: %w", err)
	}

	signed := domain.MessageSigned{
		SenderKey: s.identity.SigningPublic,
		Message:   msg,
		Signature: sealTag(s.peerIdentity.SigningKey, s.identity.SigningPublic, msg, hmacKey),
	}

	env := domain.Envelope{Signed: &signed}
	if s.pending != nil {
		env = domain.Envelope{PreKey: &domain.PreKeyMessage{
			RegistrationID: s.identity.RegistrationID,
			PreKeyID:       s.pending.preKeyID,
			PreKeySignedID: s.pending.preKeySignedID,
			BaseKey:        s.ratchet.OurPub,
			Identity: domain.RemoteIdentity{
				SigningKey:     s.identity.SigningPublic,
				ExchangeKey:    s.identity.ExchangePublic,
				Signature:      primitives.SignEd25519(s.identity.SigningPrivate, s.identity.ExchangePublic.Slice()),
				CreatedAt:      s.identity.CreatedAt,
				RegistrationID: s.identity.RegistrationID,
			},
			SignedMessage: signed,
		}}
		s.pending = nil
	}

	metrics.EncryptTotal.Inc()
	s.logger.Debug("encrypt", "counter", msg.Counter, "previousCounter", msg.PreviousCounter, "preKeyMessage", env.IsPreKeyMessage())
	s.fireUpdate()
	return env, nil
}

// Decrypt opens a MessageSigned previously produced by the peer's Encrypt
// (unwrapped from its enclosing PreKeyMessage by the caller, if any).
func (s *Session) Decrypt(ms domain.MessageSigned) ([]byte, error) {
	s.decryptMu.Lock()
	defer s.decryptMu.Unlock()

	if !primitives.ConstantTimeEqual(ms.SenderKey.Slice(), s.peerIdentity.SigningKey.Slice()) {
		metrics.DecryptTotal.WithLabelValues("bad_identity").Inc()
		return nil, fmt.Errorf("session: decrypt: %w", protoerr.ErrBadIdentity)
	}

	plaintext, hmacKey, err := s.ratchet.Decrypt(ms.Message)
	if err != nil {
		metrics.DecryptTotal.WithLabelValues(decryptFailureReason(err)).Inc()
		return nil, fmt.Errorf("session: decrypt: %w", err)
	}

	wantTag := sealTag(s.identity.SigningPublic, ms.SenderKey, ms.Message, hmacKey)
	if !primitives.ConstantTimeEqual(wantTag, ms.Signature) {
		metrics.DecryptTotal.WithLabelValues("decrypt_failed").Inc()
		return nil, fmt.Errorf("session: decrypt: %w", protoerr.ErrDecryptFailed)
	}

	metrics.DecryptTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("decrypt", "counter", ms.Message.Counter, "previousCounter", ms.Message.PreviousCounter)
	s.fireUpdate()
	return plaintext, nil
}

func decryptFailureReason(err error) string {
	switch {
	case errors.Is(err, protoerr.ErrDuplicateMessage):
		return "duplicate"
	case errors.Is(err, protoerr.ErrMessageOutsideRatchetWindow):
		return "outside_window"
	case errors.Is(err, protoerr.ErrBadIdentity):
		return "bad_identity"
	default:
		return "decrypt_failed"
	}
}

// HasRatchetKey reports whether pub matches a DH ratchet key this session
// has already observed, current or historical.
func (s *Session) HasRatchetKey(pub domain.X25519Public) bool {
	return s.ratchet.HasRatchetKey(pub)
}

// Stats summarizes the session's skipped-key cache occupancy.
func (s *Session) Stats() domain.SkippedStats {
	return domain.SkippedStats{
		TotalSkippedKeys: s.ratchet.Cache.Len(),
		TrackedSteps:     len(s.ratchet.Steps),
	}
}

func (s *Session) fireUpdate() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}
