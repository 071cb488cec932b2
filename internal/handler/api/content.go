// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/middleware"
	"github.com/olegiv/clubportal/internal/model"
)

// maxBodyBytes limits request bodies of write endpoints.
const maxBodyBytes = 1 << 20

// ErrInvalid is returned by a Prepare hook to reject a body with field errors.
type ErrInvalid map[string]string

func (e ErrInvalid) Error() string { return "invalid content" }

// Hooks customize the handler for one content kind.
type Hooks[T model.Item] struct {
	// Prepare runs on a decoded body before validation. id is empty on create.
	Prepare func(ctx context.Context, id string, item *T) error
	// Present converts an item for member-facing responses.
	Present func(item T) (any, error)
}

// ContentHandler serves the member and admin endpoints of one content kind.
type ContentHandler[T model.Item] struct {
	repo     *content.Repository[T]
	validate *validator.Validate
	hooks    Hooks[T]
	logger   *slog.Logger
}

// NewContentHandler creates a handler over repo.
func NewContentHandler[T model.Item](repo *content.Repository[T], validate *validator.Validate, hooks Hooks[T], logger *slog.Logger) *ContentHandler[T] {
	return &ContentHandler[T]{
		repo:     repo,
		validate: validate,
		hooks:    hooks,
		logger:   logger.With("kind", repo.Kind),
	}
}

// List handles GET /api/v1/{kind}.
func (h *ContentHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	opts, errs := parseListOptions(r.URL.Query())
	if errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, err := h.repo.User.ListFor(r.Context(), middleware.GetViewer(r), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, items, true)
}

// Get handles GET /api/v1/{kind}/{id}.
func (h *ContentHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.User.GetFor(r.Context(), middleware.GetViewer(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeItem(w, item, true)
}

// AdminList handles GET /api/v1/admin/{kind}.
func (h *ContentHandler[T]) AdminList(w http.ResponseWriter, r *http.Request) {
	opts, errs := parseListOptions(r.URL.Query())
	if errs != nil {
		WriteValidationError(w, errs)
		return
	}

	items, err := h.repo.Admin.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeList(w, items, false)
}

// AdminGet handles GET /api/v1/admin/{kind}/{id}.
func (h *ContentHandler[T]) AdminGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.Admin.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeItem(w, item, false)
}

// Create handles POST /api/v1/admin/{kind}.
func (h *ContentHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decode(w, r, "")
	if !ok {
		return
	}

	id, err := h.repo.Gateway.Create(r.Context(), middleware.GetViewer(r), item)
	if err != nil {
		h.writeError(w, err)
		return
	}

	created, err := h.repo.Admin.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteCreated(w, created)
}

// Update handles PUT /api/v1/admin/{kind}/{id}.
func (h *ContentHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := h.decode(w, r, id)
	if !ok {
		return
	}

	if err := h.repo.Gateway.Update(r.Context(), middleware.GetViewer(r), id, item); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCurrent(w, r, id)
}

// Delete handles DELETE /api/v1/admin/{kind}/{id}.
func (h *ContentHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Gateway.Delete(r.Context(), middleware.GetViewer(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish handles POST /api/v1/admin/{kind}/{id}/publish.
func (h *ContentHandler[T]) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// Unpublish handles POST /api/v1/admin/{kind}/{id}/unpublish.
func (h *ContentHandler[T]) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *ContentHandler[T]) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Gateway.SetPublished(r.Context(), middleware.GetViewer(r), id, published); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondCurrent(w, r, id)
}

// respondCurrent writes the stored state of id after a successful write.
func (h *ContentHandler[T]) respondCurrent(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.repo.Admin.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteSuccess(w, item, nil)
}

// decode reads, prepares and validates a request body.
// It writes the error response itself and returns false on failure.
func (h *ContentHandler[T]) decode(w http.ResponseWriter, r *http.Request, id string) (T, bool) {
	var item T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&item); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return item, false
	}

	if h.hooks.Prepare != nil {
		if err := h.hooks.Prepare(r.Context(), id, &item); err != nil {
			var invalid ErrInvalid
			if errors.As(err, &invalid) {
				WriteValidationError(w, invalid)
				return item, false
			}
			h.writeError(w, err)
			return item, false
		}
	}

	if err := h.validate.Struct(item); err != nil {
		if errs := fieldErrors(err); errs != nil {
			WriteValidationError(w, errs)
			return item, false
		}
		h.logger.Error("validating content", "error", err)
		WriteInternalError(w, "Failed to validate content")
		return item, false
	}
	return item, true
}

func (h *ContentHandler[T]) present(item T, member bool) (any, error) {
	if !member || h.hooks.Present == nil {
		return item, nil
	}
	return h.hooks.Present(item)
}

func (h *ContentHandler[T]) writeItem(w http.ResponseWriter, item T, member bool) {
	out, err := h.present(item, member)
	if err != nil {
		h.writeError(w, err)
		return
	}
	WriteSuccess(w, out, nil)
}

func (h *ContentHandler[T]) writeList(w http.ResponseWriter, items []T, member bool) {
	out := make([]any, 0, len(items))
	for _, it := range items {
		p, err := h.present(it, member)
		if err != nil {
			h.writeError(w, err)
			return
		}
		out = append(out, p)
	}
	WriteSuccess(w, out, &Meta{Total: len(out)})
}

// writeError maps content errors to HTTP responses.
func (h *ContentHandler[T]) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		WriteNotFound(w, "Content not found")
	case errors.Is(err, content.ErrUnauthorized):
		WriteForbidden(w, "Not allowed to modify content")
	case errors.Is(err, content.ErrUpstream):
		h.logger.Error("content store failure", "error", err)
		WriteBadGateway(w, "Content store unavailable")
	default:
		h.logger.Error("content request failed", "error", err)
		WriteInternalError(w, "Internal error")
	}
}

// FindBy returns a member-facing handler that looks an item up by the URL
// parameter param instead of its id, e.g. an article slug.
func (h *ContentHandler[T]) FindBy(param string, match func(item T, value string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := chi.URLParam(r, param)
		items, err := h.repo.User.ListFor(r.Context(), middleware.GetViewer(r), model.ListOptions{})
		if err != nil {
			h.writeError(w, err)
			return
		}
		for _, it := range items {
			if match(it, value) {
				h.writeItem(w, it, true)
				return
			}
		}
		WriteNotFound(w, "Content not found")
	}
}
