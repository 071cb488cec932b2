// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/clubportal/internal/cache"
	"github.com/olegiv/clubportal/internal/logging"
	"github.com/olegiv/clubportal/internal/middleware"
	"github.com/olegiv/clubportal/internal/model"
)

// CacheHandler handles cache management routes.
type CacheHandler struct {
	caches *cache.Service
	logger *slog.Logger
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(caches *cache.Service, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{caches: caches, logger: logger}
}

// CacheStatsData is the response of the cache stats endpoint.
type CacheStatsData struct {
	Namespaces []cache.NamespaceStats `json:"namespaces"`
	Total      cache.Stats            `json:"total"`
}

// Stats handles GET /api/v1/admin/cache.
func (h *CacheHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSONData(w, http.StatusOK, CacheStatsData{
		Namespaces: h.caches.AllStats(),
		Total:      h.caches.TotalStats(),
	})
}

// Clear handles POST /api/v1/admin/cache/clear - clears every namespace.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.caches.ClearAll()
	h.logger.Info("cache cleared",
		logging.AttrCategory, model.EventCategoryCache,
		logging.AttrActor, middleware.GetViewer(r).ActorID(),
	)
	writeJSONData(w, http.StatusOK, map[string]string{"cleared": "all"})
}

// ClearKind handles POST /api/v1/admin/cache/{kind}/clear - clears both
// namespaces of one content kind.
func (h *CacheHandler) ClearKind(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(chi.URLParam(r, "kind"))
	if !slices.Contains(model.Kinds(), kind) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Unknown content kind")
		return
	}

	h.caches.Invalidate(string(kind))
	h.logger.Info("cache cleared",
		logging.AttrCategory, model.EventCategoryCache,
		logging.AttrActor, middleware.GetViewer(r).ActorID(),
		"kind", kind,
	)
	writeJSONData(w, http.StatusOK, map[string]string{"cleared": string(kind)})
}
