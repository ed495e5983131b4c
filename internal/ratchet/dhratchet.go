package ratchet

import (
	"fmt"

	"ciphera/internal/domain"
	"ciphera/internal/domain/types"
	"ciphera/internal/metrics"
	"ciphera/internal/primitives"
	"ciphera/internal/protoerr"
)

// dhRatchetInfo is the HKDF info string for the DH ratchet's (root, chain)
// derivation.
const dhRatchetInfo = "WhisperRatchet"

// DeriveChain performs one DH ratchet derivation (§4.6's deriveChain): a DH
// output combined with the current root key (used as HKDF salt) yields a
// fresh root key and a fresh, zero-counter chain key.
func DeriveChain(root domain.RootKey, ourPriv domain.X25519Private, theirPub domain.X25519Public) (domain.RootKey, domain.ChainKey, error) {
	dh, err := primitives.DH(ourPriv, theirPub)
	if err != nil {
		return domain.RootKey{}, domain.ChainKey{}, fmt.Errorf("ratchet: dh ratchet dh: %w", err)
	}
	blocks, err := primitives.HKDF(dh[:], 2, root.Slice(), []byte(dhRatchetInfo))
	if err != nil {
		return domain.RootKey{}, domain.ChainKey{}, fmt.Errorf("ratchet: dh ratchet hkdf: %w", err)
	}

	var newRoot domain.RootKey
	copy(newRoot[:], blocks[0])
	chain := domain.ChainKey{Key: types.MustHMACKey(blocks[1]), Counter: 0}
	return newRoot, chain, nil
}

// State is one session's DH ratchet state: the local ratchet keypair, the
// current root key, the DH epoch counter, and a bounded ring of steps
// (one per distinct peer ratchet key observed), oldest first.
type State struct {
	OurPriv domain.X25519Private
	OurPub  domain.X25519Public
	RootKey domain.RootKey
	Counter uint32
	Steps   []domain.DHStep

	Cache          domain.SkippedKeyCache
	MaxSteps       int
	MaxKeysPerStep int
}

// NewInitiatorState builds the ratchet state immediately after X3DH for the
// initiator side: the local ratchet key is the ephemeral key used in the
// handshake, and the peer's initial ratchet key is their signed pre-key.
// Neither chain is built yet; the sending chain is derived lazily on the
// first Encrypt.
func NewInitiatorState(root domain.RootKey, ourPriv domain.X25519Private, ourPub domain.X25519Public, peerInitialRatchet domain.X25519Public, cache domain.SkippedKeyCache, maxSteps, maxKeysPerStep int) *State {
	step := domain.DHStep{
		StepID:               domain.StepID(primitives.Thumbprint(peerInitialRatchet.Slice())),
		PeerRatchetKey:       peerInitialRatchet,
		LastDecryptedCounter: -1,
	}
	return &State{
		OurPriv: ourPriv, OurPub: ourPub, RootKey: root,
		Steps:          []domain.DHStep{step},
		Cache:          cache,
		MaxSteps:       maxSteps,
		MaxKeysPerStep: maxKeysPerStep,
	}
}

// NewResponderState builds the ratchet state for the responder side: the
// local ratchet key is the signed pre-key used to complete X3DH, and the
// peer's initial ratchet key is their ephemeral base key. The receiving
// chain for this first step is built immediately, since the next operation
// is always decrypting the initiator's first message.
func NewResponderState(root domain.RootKey, ourPriv domain.X25519Private, ourPub domain.X25519Public, peerBaseKey domain.X25519Public, cache domain.SkippedKeyCache, maxSteps, maxKeysPerStep int) (*State, error) {
	newRoot, recvChain, err := DeriveChain(root, ourPriv, peerBaseKey)
	if err != nil {
		return nil, err
	}
	step := domain.DHStep{
		StepID:               domain.StepID(primitives.Thumbprint(peerBaseKey.Slice())),
		PeerRatchetKey:       peerBaseKey,
		ReceivingChain:       &recvChain,
		LastDecryptedCounter: -1,
	}
	return &State{
		OurPriv: ourPriv, OurPub: ourPub, RootKey: newRoot,
		Steps:          []domain.DHStep{step},
		Cache:          cache,
		MaxSteps:       maxSteps,
		MaxKeysPerStep: maxKeysPerStep,
	}, nil
}

func (s *State) currentStep() *domain.DHStep {
	return &s.Steps[len(s.Steps)-1]
}

func (s *State) findStep(stepID domain.StepID) (*domain.DHStep, bool) {
	for i := range s.Steps {
		if s.Steps[i].StepID == stepID {
			return &s.Steps[i], true
		}
	}
	return nil, false
}

// HasRatchetKey reports whether pub matches any step's recorded peer
// ratchet key, current or historical.
func (s *State) HasRatchetKey(pub domain.X25519Public) bool {
	_, ok := s.findStep(domain.StepID(primitives.Thumbprint(pub.Slice())))
	return ok
}

// Encrypt advances the current step's sending chain, building it first if
// this is the step's first outbound message. Building the chain for a step
// that already has a receiving chain (meaning the peer rotated since we
// last sent) also generates a fresh local ratchet key pair and bumps the
// session's DH counter, per the encrypt-side rotation rule. An initiator
// session's first message reuses the ratchet key it was created with; a
// responder session's initial step already has a receiving chain, so its
// first Encrypt rotates.
//
// The previousCounter embedded in the outgoing message is the session-level
// DH counter at the moment of encryption (§9's resolved reading), not a
// count of messages in any chain; the receiver uses it only for the
// ratchet-window staleness check on a newly observed sender ratchet key.
func (s *State) Encrypt(plaintext []byte) (domain.Message, domain.HMACKey, error) {
	cur := s.currentStep()

	if cur.SendingChain == nil {
		if cur.ReceivingChain != nil {
			newPriv, newPub, err := primitives.GenerateX25519()
			if err != nil {
				return domain.Message{}, domain.HMACKey{}, fmt.Errorf("ratchet: generate ratchet key: %w", err)
			}
			s.OurPriv, s.OurPub = newPriv, newPub
			s.Counter++
			metrics.DHRatchetRotations.Inc()
		}

		newRoot, chain, err := DeriveChain(s.RootKey, s.OurPriv, cur.PeerRatchetKey)
		if err != nil {
			return domain.Message{}, domain.HMACKey{}, err
		}
		s.RootKey = newRoot
		cur.SendingChain = &chain
	}

	counter := cur.SendingChain.Counter
	previousCounter := s.Counter
	nextChain, ciphertext, hmacKey, err := SealMessage(*cur.SendingChain, previousCounter, plaintext)
	if err != nil {
		return domain.Message{}, domain.HMACKey{}, err
	}
	cur.SendingChain = &nextChain

	msg := domain.Message{
		SenderRatchetKey: s.OurPub,
		Counter:          counter,
		PreviousCounter:  previousCounter,
		CipherText:       ciphertext,
	}
	return msg, hmacKey, nil
}

// Decrypt opens msg, pushing a new DH step if its sender ratchet key has
// not been seen before, consuming a skipped-cache entry if one exists for
// its counter, and otherwise advancing the receiving chain (caching each
// intervening skipped key) up to that counter.
//
// A new sender ratchet key is only a candidate until the AEAD tag actually
// verifies: the root rotation, counter bump, and step admission below all
// happen after decryptWithStep succeeds, so a forged message bearing a
// novel ratchet key cannot advance s past the point it failed at.
func (s *State) Decrypt(msg domain.Message) ([]byte, domain.HMACKey, error) {
	stepID := domain.StepID(primitives.Thumbprint(msg.SenderRatchetKey.Slice()))

	if step, ok := s.findStep(stepID); ok {
		return s.decryptWithStep(step, msg)
	}

	if msg.PreviousCounter < saturatingSub(s.Counter, uint32(s.MaxSteps)) {
		return nil, domain.HMACKey{}, protoerr.ErrMessageOutsideRatchetWindow
	}

	newRoot, recvChain, err := DeriveChain(s.RootKey, s.OurPriv, msg.SenderRatchetKey)
	if err != nil {
		return nil, domain.HMACKey{}, err
	}

	candidate := domain.DHStep{
		StepID:               stepID,
		PeerRatchetKey:       msg.SenderRatchetKey,
		ReceivingChain:       &recvChain,
		LastDecryptedCounter: -1,
	}

	// candidate isn't part of s.Steps yet, so decryptWithStep mutating it
	// on success touches no shared state; on failure there is nothing to
	// unwind.
	plaintext, hmacKey, err := s.decryptWithStep(&candidate, msg)
	if err != nil {
		return nil, domain.HMACKey{}, err
	}

	s.RootKey = newRoot
	s.Counter++
	metrics.DHRatchetRotations.Inc()
	s.Steps = append(s.Steps, candidate)
	s.evictOverflowSteps()

	return plaintext, hmacKey, nil
}

// decryptWithStep opens msg against step. The skipped-cache path consumes
// its entry and may fail open without any rollback concern, since a
// consumed cache entry is already gone either way. The chain-advance path
// only commits step.ReceivingChain and step.LastDecryptedCounter once
// OpenMessageWithKeys has verified the AEAD tag, so a failed decrypt never
// leaves the receiving chain advanced past the message that failed.
func (s *State) decryptWithStep(step *domain.DHStep, msg domain.Message) ([]byte, domain.HMACKey, error) {
	if cached, ok := s.Cache.Consume(step.StepID, msg.Counter); ok {
		keys, err := DeriveMessageKeys(cached)
		if err != nil {
			return nil, domain.HMACKey{}, err
		}
		plaintext, err := OpenMessageWithKeys(keys, msg.Counter, msg.PreviousCounter, msg.CipherText)
		if err != nil {
			return nil, domain.HMACKey{}, protoerr.ErrDecryptFailed
		}
		s.commitDecryptedCounter(step, msg.Counter)
		return plaintext, keys.HMAC, nil
	}

	nextChain, pending, mkRaw, err := s.advanceReceivingTo(step, msg.Counter)
	if err != nil {
		return nil, domain.HMACKey{}, err
	}

	keys, err := DeriveMessageKeys(mkRaw)
	if err != nil {
		return nil, domain.HMACKey{}, err
	}
	plaintext, err := OpenMessageWithKeys(keys, msg.Counter, msg.PreviousCounter, msg.CipherText)
	if err != nil {
		return nil, domain.HMACKey{}, protoerr.ErrDecryptFailed
	}

	for _, p := range pending {
		if err := s.Cache.Store(step.StepID, p.counter, p.raw); err != nil {
			return nil, domain.HMACKey{}, err
		}
	}
	step.ReceivingChain = &nextChain
	s.commitDecryptedCounter(step, msg.Counter)
	return plaintext, keys.HMAC, nil
}

func (s *State) commitDecryptedCounter(step *domain.DHStep, counter uint32) {
	if int64(counter) > step.LastDecryptedCounter {
		step.LastDecryptedCounter = int64(counter)
	}
}

// skippedKeyToCache is a message-key precursor passed over while advancing
// a receiving chain, held until the triggering message's AEAD tag verifies
// before it is written to the skipped-key cache.
type skippedKeyToCache struct {
	counter uint32
	raw     []byte
}

// advanceReceivingTo computes step's receiving chain advanced from its
// current counter up to and including targetCounter, without mutating
// step: it returns the advanced chain, every intermediate message-key
// precursor skipped along the way, and the precursor at targetCounter.
// The caller commits step.ReceivingChain only after verifying the message
// the target precursor was derived for.
func (s *State) advanceReceivingTo(step *domain.DHStep, targetCounter uint32) (domain.ChainKey, []skippedKeyToCache, []byte, error) {
	if step.ReceivingChain == nil {
		return domain.ChainKey{}, nil, nil, protoerr.ErrDecryptFailed
	}
	chain := *step.ReceivingChain
	if targetCounter < chain.Counter {
		return domain.ChainKey{}, nil, nil, protoerr.ErrDuplicateMessage
	}

	var targetRaw []byte
	var pending []skippedKeyToCache
	for chain.Counter <= targetCounter {
		next, mkRaw := AdvanceChain(chain)
		if chain.Counter == targetCounter {
			targetRaw = mkRaw
		} else {
			pending = append(pending, skippedKeyToCache{counter: chain.Counter, raw: mkRaw})
		}
		chain = next
	}
	return chain, pending, targetRaw, nil
}

func (s *State) evictOverflowSteps() {
	for len(s.Steps) > s.MaxSteps {
		oldest := s.Steps[0]
		s.Cache.PurgeForStep(oldest.StepID)
		s.Steps = s.Steps[1:]
	}
}

func saturatingSub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
