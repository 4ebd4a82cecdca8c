// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package resultcache holds recent analysis results keyed by document
// checksum, so repeated submissions of the same document within a
// short window skip traversal entirely. Entries expire after a TTL
// and the cache is capacity-bounded: when full, expired entries are
// evicted first, then the oldest-inserted.
package resultcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsonlens/jsonlens/lib/analysis"
	"github.com/jsonlens/jsonlens/lib/checksum"
	"github.com/jsonlens/jsonlens/lib/chunk"
	"github.com/jsonlens/jsonlens/lib/clock"
)

// Defaults, used when the corresponding Config field is zero.
const (
	// DefaultTTL is how long an entry stays valid. Thirty seconds
	// covers the repeat-submission pattern (same document analyzed
	// again moments later) without holding stale profiles for long.
	DefaultTTL = 30 * time.Second

	// DefaultCapacity bounds the entry count.
	DefaultCapacity = 1_000
)

// Config configures a Cache.
type Config struct {
	// TTL is the entry lifetime. Zero selects DefaultTTL.
	TTL time.Duration

	// Capacity is the maximum entry count. Zero selects
	// DefaultCapacity.
	Capacity int

	// Clock is the time source. Nil selects clock.Real().
	Clock clock.Clock

	// Logger receives eviction and janitor events. Nil discards.
	Logger *slog.Logger
}

// Entry is one cached analysis result.
type Entry struct {
	// Key is the document checksum the entry is stored under.
	Key checksum.Digest

	// Profile is the cached structural profile.
	Profile *analysis.Profile

	// Chunks are the document's chunks, nil if it was not split.
	Chunks []chunk.Chunk

	// InsertedAt is when the entry was stored.
	InsertedAt time.Time
}

// Cache is a TTL and capacity bounded store of analysis results.
// Safe for concurrent use.
type Cache struct {
	ttl      time.Duration
	capacity int
	clk      clock.Clock
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[checksum.Digest]*Entry
}

// New creates a Cache from the config, applying defaults for zero
// fields.
func New(config Config) *Cache {
	if config.TTL == 0 {
		config.TTL = DefaultTTL
	}
	if config.Capacity == 0 {
		config.Capacity = DefaultCapacity
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		ttl:      config.TTL,
		capacity: config.Capacity,
		clk:      config.Clock,
		logger:   config.Logger,
		entries:  make(map[checksum.Digest]*Entry),
	}
}

// Get returns the entry for key, or nil if absent or expired. An
// expired entry is removed on the spot.
func (c *Cache) Get(key checksum.Digest) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.expiredLocked(entry, c.clk.Now()) {
		delete(c.entries, key)
		return nil
	}
	return entry
}

// Set stores a result under key, replacing any existing entry. When
// the cache is full, expired entries are evicted first; if none have
// expired, the oldest-inserted entry goes.
func (c *Cache) Set(key checksum.Digest, profile *analysis.Profile, chunks []chunk.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		if c.evictExpiredLocked(now) == 0 {
			c.evictOldestLocked()
		}
	}
	c.entries[key] = &Entry{
		Key:        key,
		Profile:    profile,
		Chunks:     chunks,
		InsertedAt: now,
	}
}

// EvictExpired removes all expired entries and returns how many were
// dropped.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictExpiredLocked(c.clk.Now())
}

// Len returns the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RunJanitor evicts expired entries every interval until ctx is done.
// It blocks; run it in its own goroutine.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := c.clk.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.EvictExpired(); n > 0 {
				c.logger.Debug("evicted expired cache entries", "count", n)
			}
		}
	}
}

func (c *Cache) expiredLocked(entry *Entry, now time.Time) bool {
	return now.Sub(entry.InsertedAt) >= c.ttl
}

func (c *Cache) evictExpiredLocked(now time.Time) int {
	evicted := 0
	for key, entry := range c.entries {
		if c.expiredLocked(entry, now) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

func (c *Cache) evictOldestLocked() {
	var oldest *Entry
	for _, entry := range c.entries {
		if oldest == nil || entry.InsertedAt.Before(oldest.InsertedAt) {
			oldest = entry
		}
	}
	if oldest != nil {
		delete(c.entries, oldest.Key)
		c.logger.Debug("evicted oldest cache entry", "key", oldest.Key, "inserted_at", oldest.InsertedAt)
	}
}
