package interfaces

import (
	"time"

	domaintypes "ciphera/internal/domain/types"
)

// SkippedKeyCache is the session-global table of skipped message keys
// keyed by (stepId, counter), bounded by maxSkippedKeys and governed by
// skippedKeyTTL. The in-process default lives in package ratchet
// (ratchet.NewMemoryCache); package cache/rediscache provides an
// alternate implementation for deployments that share cache state
// across processes.
type SkippedKeyCache interface {
	// Store caches key under (stepID, counter). If the cache is at
	// capacity, expired entries are purged first; if still full, the
	// oldest entry by insertion time is evicted.
	Store(stepID domaintypes.StepID, counter uint32, key []byte) error
	// Consume deletes and returns the cached key, if present.
	Consume(stepID domaintypes.StepID, counter uint32) ([]byte, bool)
	// Has reports whether a key is cached for (stepID, counter).
	Has(stepID domaintypes.StepID, counter uint32) bool
	// PurgeExpired deletes every entry older than the configured TTL
	// relative to now.
	PurgeExpired(now time.Time)
	// PurgeForStep deletes every entry belonging to stepID, called when
	// that DH step is evicted from the step ring.
	PurgeForStep(stepID domaintypes.StepID)
	// Len returns the current number of cached entries.
	Len() int
}
