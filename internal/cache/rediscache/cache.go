// Package rediscache is an alternate domain.SkippedKeyCache backed by
// Redis, for deployments that want skipped-key state shared across
// processes instead of held in one session's memory. It is purely
// additive: internal/session defaults to ratchet.NewMemoryCache and never
// requires this package.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ciphera/internal/domain"
)

// Cache stores skipped message keys in Redis: one string key per
// (stepID, counter) entry, plus a per-step and a global sorted set
// (score = insertion unix-nano) used to find the oldest entry on overflow
// and to purge a whole step's entries in one pass.
type Cache struct {
	client     *redis.Client
	prefix     string
	maxTotal   int
	maxPerStep int
	ttl        time.Duration
}

var _ domain.SkippedKeyCache = (*Cache)(nil)

// New returns a Cache using client, namespacing all keys under prefix
// (e.g. "ciphera:" so it can share a Redis instance with other data).
func New(client *redis.Client, prefix string, maxTotal, maxPerStep int, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, maxTotal: maxTotal, maxPerStep: maxPerStep, ttl: ttl}
}

func (c *Cache) entryKey(stepID domain.StepID, counter uint32) string {
	return fmt.Sprintf("%sskipped:entry:%s:%d", c.prefix, stepID, counter)
}

func (c *Cache) stepIndexKey(stepID domain.StepID) string {
	return fmt.Sprintf("%sskipped:step:%s", c.prefix, stepID)
}

func (c *Cache) globalIndexKey() string {
	return c.prefix + "skipped:global"
}

func member(stepID domain.StepID, counter uint32) string {
	return fmt.Sprintf("%s:%d", stepID, counter)
}

// Store caches key for (stepID, counter), evicting the step's oldest entry
// first if its per-step cap is reached, then purging expired entries and
// (if still full) the globally oldest entry if the global cap is reached.
func (c *Cache) Store(stepID domain.StepID, counter uint32, key []byte) error {
	ctx := context.Background()
	now := time.Now()

	stepCount, err := c.client.ZCard(ctx, c.stepIndexKey(stepID)).Result()
	if err != nil {
		return fmt.Errorf("rediscache: step cardinality: %w", err)
	}
	if int(stepCount) >= c.maxPerStep {
		if err := c.evictOldestInStep(ctx, stepID); err != nil {
			return err
		}
	}

	total, err := c.client.ZCard(ctx, c.globalIndexKey()).Result()
	if err != nil {
		return fmt.Errorf("rediscache: global cardinality: %w", err)
	}
	if int(total) >= c.maxTotal {
		c.PurgeExpired(now)
		total, err = c.client.ZCard(ctx, c.globalIndexKey()).Result()
		if err != nil {
			return fmt.Errorf("rediscache: global cardinality: %w", err)
		}
	}
	if int(total) >= c.maxTotal {
		if err := c.evictOldestGlobal(ctx); err != nil {
			return err
		}
	}

	m := member(stepID, counter)
	score := float64(now.UnixNano())

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.entryKey(stepID, counter), key, c.ttl)
	pipe.ZAdd(ctx, c.stepIndexKey(stepID), redis.Z{Score: score, Member: m})
	pipe.ZAdd(ctx, c.globalIndexKey(), redis.Z{Score: score, Member: m})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rediscache: store: %w", err)
	}
	return nil
}

// Consume removes and returns the cached key for (stepID, counter).
func (c *Cache) Consume(stepID domain.StepID, counter uint32) ([]byte, bool) {
	ctx := context.Background()
	key, err := c.client.Get(ctx, c.entryKey(stepID, counter)).Bytes()
	if err != nil {
		return nil, false
	}

	m := member(stepID, counter)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.entryKey(stepID, counter))
	pipe.ZRem(ctx, c.stepIndexKey(stepID), m)
	pipe.ZRem(ctx, c.globalIndexKey(), m)
	_, _ = pipe.Exec(ctx)

	return key, true
}

// Has reports whether a key is cached for (stepID, counter).
func (c *Cache) Has(stepID domain.StepID, counter uint32) bool {
	ctx := context.Background()
	n, err := c.client.Exists(ctx, c.entryKey(stepID, counter)).Result()
	return err == nil && n > 0
}

// PurgeExpired removes index entries whose backing Redis key has already
// expired (Redis expires the string key itself; this reconciles the
// sorted-set indexes against that fact). Errors talking to Redis are
// swallowed, matching the interface's fire-and-forget contract; a failed
// purge just leaves stale index entries for the next call to retry.
func (c *Cache) PurgeExpired(now time.Time) {
	ctx := context.Background()
	cutoff := float64(now.Add(-c.ttl).UnixNano())
	members, err := c.client.ZRangeByScore(ctx, c.globalIndexKey(), &redis.ZRangeBy{
		Min: "-inf", Max: fmt.Sprintf("%f", cutoff),
	}).Result()
	if err != nil {
		return
	}
	for _, m := range members {
		stepID, counter, ok := splitMember(m)
		if !ok {
			continue
		}
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, c.entryKey(stepID, counter))
		pipe.ZRem(ctx, c.stepIndexKey(stepID), m)
		pipe.ZRem(ctx, c.globalIndexKey(), m)
		_, _ = pipe.Exec(ctx)
	}
}

// PurgeForStep removes every cached key belonging to stepID.
func (c *Cache) PurgeForStep(stepID domain.StepID) {
	ctx := context.Background()
	members, err := c.client.ZRange(ctx, c.stepIndexKey(stepID), 0, -1).Result()
	if err != nil {
		return
	}
	pipe := c.client.TxPipeline()
	for _, m := range members {
		if _, counter, ok := splitMember(m); ok {
			pipe.Del(ctx, c.entryKey(stepID, counter))
		}
		pipe.ZRem(ctx, c.globalIndexKey(), m)
	}
	pipe.Del(ctx, c.stepIndexKey(stepID))
	_, _ = pipe.Exec(ctx)
}

// Len returns the current number of cached entries, as tracked by the
// global index.
func (c *Cache) Len() int {
	ctx := context.Background()
	n, err := c.client.ZCard(ctx, c.globalIndexKey()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

func (c *Cache) evictOldestInStep(ctx context.Context, stepID domain.StepID) error {
	members, err := c.client.ZRangeWithScores(ctx, c.stepIndexKey(stepID), 0, 0).Result()
	if err != nil || len(members) == 0 {
		return nil
	}
	m, _ := members[0].Member.(string)
	if _, counter, ok := splitMember(m); ok {
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, c.entryKey(stepID, counter))
		pipe.ZRem(ctx, c.stepIndexKey(stepID), m)
		pipe.ZRem(ctx, c.globalIndexKey(), m)
		_, err := pipe.Exec(ctx)
		return err
	}
	return nil
}

func (c *Cache) evictOldestGlobal(ctx context.Context) error {
	members, err := c.client.ZRangeWithScores(ctx, c.globalIndexKey(), 0, 0).Result()
	if err != nil || len(members) == 0 {
		return nil
	}
	m, _ := members[0].Member.(string)
	if stepID, counter, ok := splitMember(m); ok {
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, c.entryKey(stepID, counter))
		pipe.ZRem(ctx, c.stepIndexKey(stepID), m)
		pipe.ZRem(ctx, c.globalIndexKey(), m)
		_, err := pipe.Exec(ctx)
		return err
	}
	return nil
}

func splitMember(m string) (domain.StepID, uint32, bool) {
	i := len(m) - 1
	for i >= 0 && m[i] != ':' {
		i--
	}
	if i < 0 {
		return "", 0, false
	}
	var counter uint32
	if _, err := fmt.Sscanf(m[i+1:], "%d", &counter); err != nil {
		return "", 0, false
	}
	return domain.StepID(m[:i]), counter, true
}
