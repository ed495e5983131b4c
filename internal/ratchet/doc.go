// Package ratchet implements the forward-secure symmetric chain ratchet
// and the asymmetric DH ratchet state machine that sits on top of it. The
// symmetric ratchet (chain.go) advances a chain key and derives per-message
// AEAD keys; the DH ratchet (dhratchet.go) switches between sending and
// receiving chains as new peer ratchet keys arrive, retaining a bounded
// ring of historical steps so late or reordered messages can still be
// decrypted. cache.go holds the in-memory skipped-message-key cache that
// stores keys derived ahead of where the receiving chain has been consumed.
package ratchet
