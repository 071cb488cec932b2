// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content serves club content through tier-filtered, cached readers
// and a mutation gateway that keeps those caches coherent.
package content

import (
	"log/slog"

	"github.com/olegiv/clubportal/internal/cache"
	"github.com/olegiv/clubportal/internal/model"
)

// Repository bundles the readers and the gateway for one kind.
type Repository[T model.Item] struct {
	Kind    model.Kind
	User    *UserReader[T]
	Admin   *AdminReader[T]
	Gateway *Gateway[T]
}

// NewRepository wires a repository for kind on top of store.
func NewRepository[T model.Item](kind model.Kind, store Store[T], caches *cache.Service, authorize Authorizer, logger *slog.Logger) *Repository[T] {
	return &Repository[T]{
		Kind:    kind,
		User:    NewUserReader[T](kind, store, caches, logger),
		Admin:   NewAdminReader[T](kind, store, caches, logger),
		Gateway: NewGateway[T](kind, store, caches, authorize, logger),
	}
}

// Portal holds one repository per content kind.
type Portal struct {
	Announcements *Repository[model.Announcement]
	Newsletters   *Repository[model.Newsletter]
	Videos        *Repository[model.Video]
	Schedule      *Repository[model.ScheduleEntry]
	Articles      *Repository[model.Article]

	caches *cache.Service
}

// NewPortal wires every kind against backend. Writes are restricted to admins.
func NewPortal(backend Backend, caches *cache.Service, logger *slog.Logger) *Portal {
	return &Portal{
		Announcements: NewRepository(model.KindAnnouncement, backend.Announcements(), caches, AdminsOnly, logger),
		Newsletters:   NewRepository(model.KindNewsletter, backend.Newsletters(), caches, AdminsOnly, logger),
		Videos:        NewRepository(model.KindVideo, backend.Videos(), caches, AdminsOnly, logger),
		Schedule:      NewRepository(model.KindSchedule, backend.Schedule(), caches, AdminsOnly, logger),
		Articles:      NewRepository(model.KindArticle, backend.Articles(), caches, AdminsOnly, logger),
		caches:        caches,
	}
}

// Caches returns the cache service shared by every repository.
func (p *Portal) Caches() *cache.Service {
	return p.caches
}
