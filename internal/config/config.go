// Package config holds the tunable options for a ratchet session: the
// step-ring and skipped-key cache bounds, and the debug-logging switch.
// Options has no network or disk dependency; cmd/ciphera is the only
// caller that loads overrides from the environment (see env.go).
package config

import "time"

// Options mirrors the configuration table a session is built with.
// Zero-value Options is not valid; use Default() and override fields as
// needed.
type Options struct {
	// MaxRatchetSteps bounds the size of the DH step ring: the number of
	// historical peer ratchet keys a session retains.
	MaxRatchetSteps int
	// MaxSkippedKeys is the global cap on cached out-of-order message keys.
	MaxSkippedKeys int
	// SkippedKeyTTL is the maximum age of any cached skipped key.
	SkippedKeyTTL time.Duration
	// MaxMessageKeysPerStep caps in-chain skipped keys per receiving chain.
	MaxMessageKeysPerStep int
	// ExportableKeys is carried in Options and read from the environment,
	// but Serialize does not consult it: a Serialize() blob always includes
	// the session's ratchet keypair, whatever this field's value.
	ExportableKeys bool
	// Debug enables state-transition logging with no cryptographic effect.
	Debug bool
}

// Default returns the configuration table's default values.
func Default() Options {
	return Options{
		MaxRatchetSteps:       1000,
		MaxSkippedKeys:        10000,
		SkippedKeyTTL:         7 * 24 * time.Hour,
		MaxMessageKeysPerStep: 1000,
		ExportableKeys:        false,
		Debug:                 false,
	}
}
