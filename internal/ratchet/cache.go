package ratchet

import (
	"sync"
	"time"

	"ciphera/internal/domain"
	"ciphera/internal/metrics"
)

type cacheKey struct {
	step    domain.StepID
	counter uint32
}

type skippedEntry struct {
	key      []byte
	storedAt time.Time
}

// MemoryCache is an in-process domain.SkippedKeyCache: a table of message
// keys awaiting out-of-order decryption, bounded globally by maxTotal and
// per DH step by maxPerStep, with entries additionally expiring after ttl.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[cacheKey]skippedEntry
	perStep    map[domain.StepID]int
	maxTotal   int
	maxPerStep int
	ttl        time.Duration
}

var _ domain.SkippedKeyCache = (*MemoryCache)(nil)

// NewMemoryCache constructs an empty cache with the given bounds.
func NewMemoryCache(maxTotal, maxPerStep int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[cacheKey]skippedEntry),
		perStep:    make(map[domain.StepID]int),
		maxTotal:   maxTotal,
		maxPerStep: maxPerStep,
		ttl:        ttl,
	}
}

// Store records key for (stepID, counter). Per §4.7's store algorithm: if
// the global cache is at capacity, expired entries are purged first, then
// (if still full) the globally oldest entry is evicted; if the step's own
// cache is at its per-step cap, the step's oldest entry is evicted instead
// of refusing the write, so ErrCacheExhausted never needs to surface.
func (c *MemoryCache) Store(stepID domain.StepID, counter uint32, key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	if c.perStep[stepID] >= c.maxPerStep {
		c.evictOldestInStepLocked(stepID)
	}
	if len(c.entries) >= c.maxTotal {
		c.purgeExpiredLocked(now)
	}
	if len(c.entries) >= c.maxTotal {
		c.evictOldestLocked()
	}

	k := cacheKey{stepID, counter}
	if _, exists := c.entries[k]; !exists {
		c.perStep[stepID]++
	}
	c.entries[k] = skippedEntry{key: append([]byte(nil), key...), storedAt: now}
	metrics.SkippedKeysStored.Inc()
	metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
	return nil
}

// Consume removes and returns the key for (stepID, counter), if present and
// not yet expired. An entry older than ttl is evicted and reported absent,
// the same as if it had never been stored.
func (c *MemoryCache) Consume(stepID domain.StepID, counter uint32) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{stepID, counter}
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > c.ttl {
		delete(c.entries, k)
		c.perStep[stepID]--
		metrics.SkippedKeysEvicted.WithLabelValues("ttl").Inc()
		metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
		return nil, false
	}
	delete(c.entries, k)
	c.perStep[stepID]--
	metrics.SkippedKeysConsumed.Inc()
	metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
	return e.key, true
}

// Has reports whether a key is cached for (stepID, counter).
func (c *MemoryCache) Has(stepID domain.StepID, counter uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[cacheKey{stepID, counter}]
	return ok
}

// PurgeExpired removes every entry older than ttl relative to now.
func (c *MemoryCache) PurgeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpiredLocked(now)
}

// PurgeForStep removes every cached key belonging to stepID, called when
// the step is evicted from the DH step ring.
func (c *MemoryCache) PurgeForStep(stepID domain.StepID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k := range c.entries {
		if k.step == stepID {
			delete(c.entries, k)
			removed++
		}
	}
	delete(c.perStep, stepID)
	if removed > 0 {
		metrics.SkippedKeysEvicted.WithLabelValues("step_overflow").Add(float64(removed))
		metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
	}
}

// Len returns the total number of cached skipped keys across all steps.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot returns every cached entry as a domain.SkippedMessageKey, for a
// session's Serialize to persist alongside its ratchet state.
func (c *MemoryCache) Snapshot() []domain.SkippedMessageKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.SkippedMessageKey, 0, len(c.entries))
	for k, e := range c.entries {
		out = append(out, domain.SkippedMessageKey{
			StepID:   k.step,
			Counter:  k.counter,
			KeyBytes: append([]byte(nil), e.key...),
			StoredAt: e.storedAt,
		})
	}
	return out
}

// Restore replaces the cache's contents with entries, as captured by a
// prior Snapshot. It does not re-check ttl or capacity bounds; a restored
// cache trusts the blob it came from.
func (c *MemoryCache) Restore(entries []domain.SkippedMessageKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]skippedEntry, len(entries))
	c.perStep = make(map[domain.StepID]int)
	for _, e := range entries {
		k := cacheKey{e.StepID, e.Counter}
		c.entries[k] = skippedEntry{key: append([]byte(nil), e.KeyBytes...), storedAt: e.StoredAt}
		c.perStep[e.StepID]++
	}
	metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
}

func (c *MemoryCache) purgeExpiredLocked(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
			c.perStep[k.step]--
			metrics.SkippedKeysEvicted.WithLabelValues("ttl").Inc()
		}
	}
	metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
}

func (c *MemoryCache) evictOldestLocked() {
	oldestKey, oldestTime, found := c.oldestLocked(func(cacheKey) bool { return true })
	if found {
		delete(c.entries, oldestKey)
		c.perStep[oldestKey.step]--
		metrics.SkippedKeysEvicted.WithLabelValues("capacity").Inc()
		metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
	}
	_ = oldestTime
}

func (c *MemoryCache) evictOldestInStepLocked(stepID domain.StepID) {
	oldestKey, _, found := c.oldestLocked(func(k cacheKey) bool { return k.step == stepID })
	if found {
		delete(c.entries, oldestKey)
		c.perStep[stepID]--
		metrics.SkippedKeysEvicted.WithLabelValues("capacity").Inc()
		metrics.SkippedKeysTracked.Set(float64(len(c.entries)))
	}
}

func (c *MemoryCache) oldestLocked(match func(cacheKey) bool) (cacheKey, time.Time, bool) {
	var oldestKey cacheKey
	var oldestTime time.Time
	found := false
	for k, e := range c.entries {
		if !match(k) {
			continue
		}
		if !found || e.storedAt.Before(oldestTime) {
			oldestKey, oldestTime, found = k, e.storedAt, true
		}
	}
	return oldestKey, oldestTime, found
}
