// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/clubportal/internal/cache"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/tier"
)

// reader is the read-through cache shared by the user and admin readers.
// Lists and single items live in the same namespace; an item is cached as a
// one-element slice under cache.IDKey.
type reader[T model.Item] struct {
	kind    model.Kind
	adapter Adapter[T]
	ns      *cache.Namespace[[]T]
	group   singleflight.Group
	logger  *slog.Logger
}

func newReader[T model.Item](kind model.Kind, adapter Adapter[T], ns *cache.Namespace[[]T], logger *slog.Logger) *reader[T] {
	return &reader[T]{
		kind:    kind,
		adapter: adapter,
		ns:      ns,
		logger:  logger,
	}
}

// list returns the cached selection for key, building it from a full
// snapshot on a miss. Concurrent misses for the same key share one fetch,
// which is not cancelled with the request that started it.
func (r *reader[T]) list(ctx context.Context, key string, allow Policy, opts model.ListOptions) ([]T, error) {
	if items, ok := r.ns.Get(key); ok {
		return slices.Clone(items), nil
	}

	gen := r.ns.Generation()
	v, err, _ := r.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		r.logger.Debug("cache miss", "namespace", r.ns.Name(), "key", key)

		all, err := r.adapter.ListAll(context.WithoutCancel(ctx))
		if err != nil {
			r.logger.Warn("listing content failed", "kind", r.kind, "error", err)
			return nil, upstream(r.kind, "list", err)
		}

		selected := selectItems(all, allow, opts)
		r.ns.SetIfGeneration(key, selected, gen)
		return selected, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]T)), nil
}

// get returns the item with id if cacheable allows caching it and visible allows returning it.
func (r *reader[T]) get(ctx context.Context, id string, cacheable, visible Policy) (T, error) {
	var zero T
	key := cache.IDKey(id)

	if cached, ok := r.ns.Get(key); ok && len(cached) == 1 {
		if !visible(cached[0]) {
			return zero, ErrNotFound
		}
		return cached[0], nil
	}

	gen := r.ns.Generation()
	v, err, _ := r.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		item, err := r.adapter.GetByID(context.WithoutCancel(ctx), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrNotFound
			}
			r.logger.Warn("fetching content failed", "kind", r.kind, "id", id, "error", err)
			return nil, upstream(r.kind, "get", err)
		}
		if !cacheable(item) {
			return nil, ErrNotFound
		}
		r.ns.SetIfGeneration(key, []T{item}, gen)
		return item, nil
	})
	if err != nil {
		return zero, err
	}

	item := v.(T)
	if !visible(item) {
		return zero, ErrNotFound
	}
	return item, nil
}

func isPublished(item model.Item) bool {
	return item.IsPublished()
}

// UserReader serves the member-facing view: published items the viewer's tier may see.
type UserReader[T model.Item] struct {
	r *reader[T]
}

// NewUserReader creates a reader backed by the user namespace of kind.
func NewUserReader[T model.Item](kind model.Kind, adapter Adapter[T], caches *cache.Service, logger *slog.Logger) *UserReader[T] {
	ns := cache.NamespaceFor[[]T](caches, string(kind), cache.RoleUser)
	return &UserReader[T]{r: newReader(kind, adapter, ns, logger)}
}

// List returns the published items visible to userTier, ordered and limited per opts.
// Results are cached per (tier, options).
func (u *UserReader[T]) List(ctx context.Context, userTier tier.Tier, opts model.ListOptions) ([]T, error) {
	userTier = tier.Parse(string(userTier))
	opts = opts.Normalize()
	opts.PublishedOnly = true

	key, err := cache.JoinKey("list:"+string(userTier), opts)
	if err != nil {
		return nil, err
	}
	return u.r.list(ctx, key, MemberPolicy(userTier), opts)
}

// Get returns the item with id if it is published and userTier may see it.
// Otherwise it returns ErrNotFound, whether or not the item exists.
func (u *UserReader[T]) Get(ctx context.Context, id string, userTier tier.Tier) (T, error) {
	userTier = tier.Parse(string(userTier))
	return u.r.get(ctx, id, isPublished, MemberPolicy(userTier))
}

// ListFor is List for a session viewer. Anonymous viewers get an empty list.
func (u *UserReader[T]) ListFor(ctx context.Context, viewer *model.Viewer, opts model.ListOptions) ([]T, error) {
	if !viewer.Authenticated() {
		return []T{}, nil
	}
	return u.List(ctx, viewer.EffectiveTier(), opts)
}

// GetFor is Get for a session viewer. Anonymous viewers always get ErrNotFound.
func (u *UserReader[T]) GetFor(ctx context.Context, viewer *model.Viewer, id string) (T, error) {
	if !viewer.Authenticated() {
		var zero T
		return zero, ErrNotFound
	}
	return u.Get(ctx, id, viewer.EffectiveTier())
}

// AdminReader serves the admin console: every item, published or not, regardless of tier.
type AdminReader[T model.Item] struct {
	r *reader[T]
}

// NewAdminReader creates a reader backed by the admin namespace of kind.
func NewAdminReader[T model.Item](kind model.Kind, adapter Adapter[T], caches *cache.Service, logger *slog.Logger) *AdminReader[T] {
	ns := cache.NamespaceFor[[]T](caches, string(kind), cache.RoleAdmin)
	return &AdminReader[T]{r: newReader(kind, adapter, ns, logger)}
}

// List returns all items ordered and limited per opts. PublishedOnly is ignored.
func (a *AdminReader[T]) List(ctx context.Context, opts model.ListOptions) ([]T, error) {
	opts = opts.Normalize()
	opts.PublishedOnly = false

	key, err := cache.JoinKey("list", opts)
	if err != nil {
		return nil, err
	}
	return a.r.list(ctx, key, AllowAll, opts)
}

// Get returns the item with id or ErrNotFound if it does not exist.
func (a *AdminReader[T]) Get(ctx context.Context, id string) (T, error) {
	return a.r.get(ctx, id, AllowAll, AllowAll)
}
