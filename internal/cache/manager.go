// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Role selects the user-facing or admin-facing namespace of an entity.
type Role string

// Namespace roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Default TTLs.
const (
	DefaultUserTTL  = 5 * time.Minute
	DefaultAdminTTL = 2 * time.Minute
)

// Config holds cache service settings.
type Config struct {
	UserTTL  time.Duration
	AdminTTL time.Duration
	Clock    clock.Clock // nil means wall clock
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		UserTTL:  DefaultUserTTL,
		AdminTTL: DefaultAdminTTL,
	}
}

// namespace is the type-erased view of a Namespace used for management.
type namespace interface {
	Name() string
	TTL() time.Duration
	Clear()
	Stats() Stats
	ResetStats()
}

// NamespaceStats holds statistics for one namespace.
type NamespaceStats struct {
	Name   string        `json:"name"`
	Entity string        `json:"entity"`
	Role   Role          `json:"role"`
	TTL    time.Duration `json:"ttl"`
	Stats  Stats         `json:"stats"`
}

type registered struct {
	entity string
	role   Role
	ns     namespace
}

// Service owns every cache namespace in the process.
// Create one at startup and pass it to the readers and gateways that need it.
type Service struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.Mutex
	namespaces map[string]registered
}

// NewService creates a cache service. Zero TTLs fall back to the defaults.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.UserTTL <= 0 {
		cfg.UserTTL = DefaultUserTTL
	}
	if cfg.AdminTTL <= 0 {
		cfg.AdminTTL = DefaultAdminTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:        cfg,
		logger:     logger,
		namespaces: make(map[string]registered),
	}
}

// Clock returns the clock shared by all namespaces.
func (s *Service) Clock() clock.Clock {
	return s.cfg.Clock
}

// NamespaceName returns the name of the namespace for an entity and role.
// Format: {entity}_{role}
func NamespaceName(entity string, role Role) string {
	return entity + "_" + string(role)
}

// NamespaceFor returns the namespace for (entity, role), creating it on first use.
// Asking for the same namespace with a different value type is a programming error and panics.
func NamespaceFor[V any](s *Service, entity string, role Role) *Namespace[V] {
	name := NamespaceName(entity, role)

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.namespaces[name]; ok {
		ns, ok := r.ns.(*Namespace[V])
		if !ok {
			panic(fmt.Sprintf("cache: namespace %q already registered with a different value type", name))
		}
		return ns
	}

	ttl := s.cfg.UserTTL
	if role == RoleAdmin {
		ttl = s.cfg.AdminTTL
	}
	ns := NewNamespace[V](name, ttl, s.cfg.Clock)
	s.namespaces[name] = registered{entity: entity, role: role, ns: ns}
	return ns
}

// Invalidate clears both the user and admin namespaces of an entity.
func (s *Service) Invalidate(entity string) {
	s.mu.Lock()
	var cleared []string
	for _, role := range []Role{RoleAdmin, RoleUser} {
		if r, ok := s.namespaces[NamespaceName(entity, role)]; ok {
			r.ns.Clear()
			cleared = append(cleared, r.ns.Name())
		}
	}
	s.mu.Unlock()

	s.logger.Info("cache invalidated", "category", "cache", "entity", entity, "namespaces", cleared)
}

// ClearAll clears every namespace and resets statistics.
func (s *Service) ClearAll() {
	s.mu.Lock()
	for _, r := range s.namespaces {
		r.ns.Clear()
		r.ns.ResetStats()
	}
	s.mu.Unlock()

	s.logger.Info("cache stats reset", "category", "cache")
}

// AllStats returns statistics for all namespaces, sorted by name.
func (s *Service) AllStats() []NamespaceStats {
	s.mu.Lock()
	stats := make([]NamespaceStats, 0, len(s.namespaces))
	for _, r := range s.namespaces {
		stats = append(stats, NamespaceStats{
			Name:   r.ns.Name(),
			Entity: r.entity,
			Role:   r.role,
			TTL:    r.ns.TTL(),
			Stats:  r.ns.Stats(),
		})
	}
	s.mu.Unlock()

	slices.SortFunc(stats, func(a, b NamespaceStats) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return stats
}

// TotalStats returns aggregated statistics across all namespaces.
func (s *Service) TotalStats() Stats {
	var total Stats
	for _, ns := range s.AllStats() {
		total.Hits += ns.Stats.Hits
		total.Misses += ns.Stats.Misses
		total.Sets += ns.Stats.Sets
		total.Clears += ns.Stats.Clears
		total.Items += ns.Stats.Items

		// Use the most recent reset time from any namespace
		if ns.Stats.ResetAt != nil && (total.ResetAt == nil || ns.Stats.ResetAt.After(*total.ResetAt)) {
			total.ResetAt = ns.Stats.ResetAt
		}
	}

	if requests := total.Hits + total.Misses; requests > 0 {
		total.HitRate = float64(total.Hits) / float64(requests) * 100
	}
	return total
}
