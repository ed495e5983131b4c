// Package protoerr defines the sentinel error kinds returned by the
// ratchet core, so callers can branch with errors.Is instead of string
// matching.
package protoerr

import "errors"

var (
	// ErrMalformedMessage means codec decoding failed: a missing
	// required field, a length mismatch, or a corrupt frame.
	ErrMalformedMessage = errors.New("protoerr: malformed message")

	// ErrBadIdentity means an identity or signed pre-key signature
	// failed verification.
	ErrBadIdentity = errors.New("protoerr: bad identity")

	// ErrUnknownPreKey means a cited pre-key id is absent or was
	// already consumed.
	ErrUnknownPreKey = errors.New("protoerr: unknown pre-key")

	// ErrMessageOutsideRatchetWindow means a message's previousCounter
	// predates the retained step ring by more than maxRatchetSteps.
	ErrMessageOutsideRatchetWindow = errors.New("protoerr: message outside ratchet window")

	// ErrDuplicateMessage means the counter was already decrypted and
	// is not present in the skipped-key cache.
	ErrDuplicateMessage = errors.New("protoerr: duplicate message")

	// ErrDecryptFailed means the AEAD tag or MessageSigned MAC did not
	// verify.
	ErrDecryptFailed = errors.New("protoerr: decrypt failed")

	// ErrCacheExhausted is internal only: it is handled by eviction in
	// the skipped-key cache and must never surface to a caller.
	ErrCacheExhausted = errors.New("protoerr: cache exhausted")

	// ErrEngineUnavailable means no crypto engine has been configured.
	ErrEngineUnavailable = errors.New("protoerr: crypto engine unavailable")
)
