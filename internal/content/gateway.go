// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"log/slog"

	"github.com/olegiv/clubportal/internal/cache"
	"github.com/olegiv/clubportal/internal/model"
)

// Authorizer decides whether actor may mutate content.
type Authorizer func(actor *model.Viewer) bool

// AdminsOnly allows admins and nobody else.
func AdminsOnly(actor *model.Viewer) bool {
	return actor.IsAdmin()
}

// Gateway performs writes for one kind. Every successful write clears both
// the admin and user namespaces of the kind; a failed write leaves them untouched.
type Gateway[T model.Item] struct {
	kind      model.Kind
	writer    Writer[T]
	caches    *cache.Service
	authorize Authorizer
	logger    *slog.Logger
}

// NewGateway creates a gateway. A nil authorizer means AdminsOnly.
func NewGateway[T model.Item](kind model.Kind, writer Writer[T], caches *cache.Service, authorize Authorizer, logger *slog.Logger) *Gateway[T] {
	if authorize == nil {
		authorize = AdminsOnly
	}
	return &Gateway[T]{
		kind:      kind,
		writer:    writer,
		caches:    caches,
		authorize: authorize,
		logger:    logger,
	}
}

// Create stores a new item and returns its id.
func (g *Gateway[T]) Create(ctx context.Context, actor *model.Viewer, item T) (string, error) {
	if err := g.check(actor, "create"); err != nil {
		return "", err
	}

	id, err := g.writer.Create(ctx, item, actor.ActorID())
	if err != nil {
		return "", g.fail("create", "", err)
	}

	g.invalidate("create", id, actor)
	return id, nil
}

// Update replaces the item with id.
func (g *Gateway[T]) Update(ctx context.Context, actor *model.Viewer, id string, item T) error {
	if err := g.check(actor, "update"); err != nil {
		return err
	}

	if err := g.writer.Update(ctx, id, item); err != nil {
		return g.fail("update", id, err)
	}

	g.invalidate("update", id, actor)
	return nil
}

// Delete removes the item with id.
func (g *Gateway[T]) Delete(ctx context.Context, actor *model.Viewer, id string) error {
	if err := g.check(actor, "delete"); err != nil {
		return err
	}

	if err := g.writer.Delete(ctx, id); err != nil {
		return g.fail("delete", id, err)
	}

	g.invalidate("delete", id, actor)
	return nil
}

// SetPublished publishes or unpublishes the item with id.
func (g *Gateway[T]) SetPublished(ctx context.Context, actor *model.Viewer, id string, published bool) error {
	op := "unpublish"
	if published {
		op = "publish"
	}
	if err := g.check(actor, op); err != nil {
		return err
	}

	if err := g.writer.SetPublished(ctx, id, published); err != nil {
		return g.fail(op, id, err)
	}

	g.invalidate(op, id, actor)
	return nil
}

func (g *Gateway[T]) check(actor *model.Viewer, op string) error {
	if g.authorize(actor) {
		return nil
	}
	g.logger.Warn("content mutation denied",
		"category", model.EventCategoryAuth,
		"kind", g.kind,
		"op", op,
		"actor", actor.ActorID(),
	)
	return ErrUnauthorized
}

func (g *Gateway[T]) fail(op, id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	g.logger.Warn("content write failed", "category", model.EventCategoryContent, "kind", g.kind, "op", op, "id", id, "error", err)
	return upstream(g.kind, op, err)
}

func (g *Gateway[T]) invalidate(op, id string, actor *model.Viewer) {
	g.caches.Invalidate(string(g.kind))
	g.logger.Info("content changed",
		"category", model.EventCategoryContent,
		"kind", g.kind,
		"op", op,
		"id", id,
		"actor", actor.ActorID(),
	)
}
