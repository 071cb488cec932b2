// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/model"
)

// API holds the content handlers of every kind.
type API struct {
	member []func(chi.Router)
	admin  []func(chi.Router)
}

// New builds the handlers for every kind in portal.
func New(portal *content.Portal, logger *slog.Logger) *API {
	a := &API{}
	v := NewValidator()

	register(a, portal.Announcements, v, Hooks[model.Announcement]{}, logger)
	register(a, portal.Newsletters, v, Hooks[model.Newsletter]{Present: presentNewsletter}, logger)
	register(a, portal.Videos, v, Hooks[model.Video]{}, logger)
	register(a, portal.Schedule, v, Hooks[model.ScheduleEntry]{}, logger)
	articles := register(a, portal.Articles, v, Hooks[model.Article]{
		Prepare: prepareArticle(portal.Articles.Admin),
		Present: presentArticle,
	}, logger)

	a.member = append(a.member, func(r chi.Router) {
		r.Get("/articles/by-slug/{slug}", articles.FindBy("slug", func(it model.Article, slug string) bool {
			return it.Slug == slug
		}))
	})
	return a
}

// register adds the routes of one kind and returns its handler.
func register[T model.Item](a *API, repo *content.Repository[T], v *validator.Validate, hooks Hooks[T], logger *slog.Logger) *ContentHandler[T] {
	h := NewContentHandler(repo, v, hooks, logger)
	base := "/" + string(repo.Kind)

	a.member = append(a.member, func(r chi.Router) {
		r.Get(base, h.List)
		r.Get(base+"/{id}", h.Get)
	})
	a.admin = append(a.admin, func(r chi.Router) {
		r.Get(base, h.AdminList)
		r.Post(base, h.Create)
		r.Get(base+"/{id}", h.AdminGet)
		r.Put(base+"/{id}", h.Update)
		r.Delete(base+"/{id}", h.Delete)
		r.Post(base+"/{id}/publish", h.Publish)
		r.Post(base+"/{id}/unpublish", h.Unpublish)
	})
	return h
}

// MemberRoutes registers the member-facing read endpoints on r.
func (a *API) MemberRoutes(r chi.Router) {
	for _, fn := range a.member {
		fn(r)
	}
}

// AdminRoutes registers the admin endpoints on r. The caller guards r with
// middleware.RequireAdmin.
func (a *API) AdminRoutes(r chi.Router) {
	for _, fn := range a.admin {
		fn(r)
	}
}
