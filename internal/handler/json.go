// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the operational HTTP endpoints: health checks,
// cache management, scheduled jobs and the event log.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/clubportal/internal/middleware"
)

// writeJSONData writes data inside the {"data": ...} envelope.
func writeJSONData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	middleware.WriteAPIError(w, statusCode, code, message, nil)
}
