// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the process-local content cache for clubportal.
//
// A Namespace is an isolated key space with one TTL. Entries expire lazily:
// there is no background sweeper, and an expired entry is dropped the next
// time it is read. There is no capacity bound.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Stats holds cache statistics.
type Stats struct {
	Hits    int64      `json:"hits"`
	Misses  int64      `json:"misses"`
	Sets    int64      `json:"sets"`
	Clears  int64      `json:"clears"`
	Items   int        `json:"items"`
	HitRate float64    `json:"hit_rate"`
	ResetAt *time.Time `json:"reset_at,omitempty"` // when stats were last reset (nil if never reset)
}

// entry holds a cached value with the time it was stored.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Namespace is a thread-safe key/value store with per-entry TTL.
type Namespace[V any] struct {
	name  string
	ttl   time.Duration
	clock clock.Clock

	mu    sync.RWMutex
	items map[string]entry[V]
	gen   uint64 // bumped by Clear

	// Stats
	hits         atomic.Int64
	misses       atomic.Int64
	sets         atomic.Int64
	clears       atomic.Int64
	statsResetAt atomic.Pointer[time.Time]
}

// NewNamespace creates an empty namespace. A nil clock uses wall time.
func NewNamespace[V any](name string, ttl time.Duration, clk clock.Clock) *Namespace[V] {
	if clk == nil {
		clk = clock.New()
	}
	return &Namespace[V]{
		name:  name,
		ttl:   ttl,
		clock: clk,
		items: make(map[string]entry[V]),
	}
}

// Name returns the namespace name, e.g. "videos_user".
func (n *Namespace[V]) Name() string {
	return n.name
}

// TTL returns the configured time-to-live.
func (n *Namespace[V]) TTL() time.Duration {
	return n.ttl
}

// Get returns the value stored under key if it is present and not older than the TTL.
// A stale entry is removed and reported as a miss.
func (n *Namespace[V]) Get(key string) (V, bool) {
	n.mu.RLock()
	e, ok := n.items[key]
	n.mu.RUnlock()

	if !ok {
		n.misses.Add(1)
		var zero V
		return zero, false
	}

	if n.clock.Since(e.storedAt) > n.ttl {
		n.mu.Lock()
		// Only drop it if nobody replaced it meanwhile
		if cur, ok := n.items[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(n.items, key)
		}
		n.mu.Unlock()
		n.misses.Add(1)
		var zero V
		return zero, false
	}

	n.hits.Add(1)
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (n *Namespace[V]) Set(key string, value V) {
	n.mu.Lock()
	n.items[key] = entry[V]{value: value, storedAt: n.clock.Now()}
	n.mu.Unlock()
	n.sets.Add(1)
}

// SetIfGeneration stores value only if the namespace has not been cleared
// since gen was read. It reports whether the value was stored.
func (n *Namespace[V]) SetIfGeneration(key string, value V, gen uint64) bool {
	n.mu.Lock()
	if n.gen != gen {
		n.mu.Unlock()
		return false
	}
	n.items[key] = entry[V]{value: value, storedAt: n.clock.Now()}
	n.mu.Unlock()
	n.sets.Add(1)
	return true
}

// Generation returns a counter that changes every time the namespace is cleared.
func (n *Namespace[V]) Generation() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gen
}

// Clear drops every entry in the namespace.
func (n *Namespace[V]) Clear() {
	n.mu.Lock()
	n.items = make(map[string]entry[V])
	n.gen++
	n.mu.Unlock()
	n.clears.Add(1)
}

// Len returns the number of stored entries, including ones that have expired but not yet been read.
func (n *Namespace[V]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.items)
}

// Stats returns current cache statistics.
func (n *Namespace[V]) Stats() Stats {
	hits := n.hits.Load()
	misses := n.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    n.sets.Load(),
		Clears:  n.clears.Load(),
		Items:   n.Len(),
		HitRate: hitRate,
		ResetAt: n.statsResetAt.Load(),
	}
}

// ResetStats resets the cache statistics.
func (n *Namespace[V]) ResetStats() {
	n.hits.Store(0)
	n.misses.Store(0)
	n.sets.Store(0)
	n.clears.Store(0)
	now := n.clock.Now()
	n.statsResetAt.Store(&now)
}
