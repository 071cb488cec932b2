// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/clubportal/internal/logging"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyViewer is the context key for the request's viewer.
const ContextKeyViewer ContextKey = "viewer"

// LoadViewer reads the member identity from the session and stores it in the
// request context. Requests without a member id carry a nil viewer.
// sm.LoadAndSave must run before this middleware.
func LoadViewer(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := session.Viewer(r.Context(), sm)
			if v == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
		})
	}
}

// WithViewer returns a copy of ctx carrying v.
func WithViewer(ctx context.Context, v *model.Viewer) context.Context {
	return context.WithValue(ctx, ContextKeyViewer, v)
}

// GetViewer returns the viewer from the request context, or nil when anonymous.
func GetViewer(r *http.Request) *model.Viewer {
	v, ok := r.Context().Value(ContextKeyViewer).(*model.Viewer)
	if !ok {
		return nil
	}
	return v
}

// RequireAdmin rejects requests whose viewer is not an admin.
// Anonymous requests get 401, authenticated non-admins get 403.
// Denials are logged at WARN so they reach the event log.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := GetViewer(r)
			if v.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			if !v.Authenticated() {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			logger.Warn("access denied",
				logging.AttrCategory, model.EventCategoryAuth,
				logging.AttrActor, v.MemberID,
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"role", v.Role,
				"remote_addr", r.RemoteAddr,
			)
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin access required", nil)
		})
	}
}
