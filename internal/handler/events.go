// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/clubportal/internal/store"
)

// MaxEvents caps the limit query parameter of the event list.
const MaxEvents = 500

// EventsHandler handles event log viewing routes.
type EventsHandler struct {
	events *store.Events
	logger *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *store.Events, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{events: events, logger: logger}
}

// EventView is an event as returned by the API.
type EventView struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	ActorID   string         `json:"actor_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Details   string         `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// List handles GET /api/v1/admin/events?category=&limit=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "bad_request", "Invalid limit")
			return
		}
		limit = min(n, MaxEvents)
	}

	events, err := h.events.ListEvents(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to list events")
		return
	}

	out := make([]EventView, len(events))
	for i, ev := range events {
		out[i] = EventView{
			ID:        ev.ID,
			Level:     ev.Level,
			Category:  ev.Category,
			Message:   ev.Message,
			ActorID:   ev.ActorID,
			Details:   formatMetadata(ev.Metadata),
			CreatedAt: ev.CreatedAt,
		}
		var meta map[string]any
		if json.Unmarshal([]byte(ev.Metadata), &meta) == nil && len(meta) > 0 {
			out[i].Metadata = meta
		}
	}
	writeJSONData(w, http.StatusOK, out)
}

// formatMetadata converts JSON metadata to readable text format.
// Example: {"path":"/admin/videos","error":"not found"} -> "error: not found, path: /admin/videos"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata // Return as-is if not valid JSON
	}

	if len(data) == 0 {
		return ""
	}

	// Sort keys for consistent output order
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}
