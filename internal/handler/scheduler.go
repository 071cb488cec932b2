// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/clubportal/internal/logging"
	"github.com/olegiv/clubportal/internal/middleware"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/scheduler"
)

// SchedulerHandler exposes the registered jobs.
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(s *scheduler.Scheduler, logger *slog.Logger) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s, logger: logger}
}

// List handles GET /api/v1/admin/scheduler.
func (h *SchedulerHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSONData(w, http.StatusOK, h.scheduler.Jobs())
}

// Trigger handles POST /api/v1/admin/scheduler/{name}/run.
func (h *SchedulerHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.scheduler.TriggerNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	case err != nil:
		h.logger.Error("manual job run failed", "job", name, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "job_failed", err.Error())
		return
	}

	h.logger.Info("job triggered manually",
		logging.AttrCategory, model.EventCategorySystem,
		logging.AttrActor, middleware.GetViewer(r).ActorID(),
		"job", name,
	)
	writeJSONData(w, http.StatusOK, map[string]string{"ran": name})
}
