// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session stores the member identity issued by the club's identity
// provider. clubportal never authenticates members itself; it only reads the
// identity back from the session.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/tier"
)

// Session keys.
const (
	KeyMemberID     = "member_id"
	KeyTier         = "tier"
	KeyPlatinumKind = "platinum_kind"
	KeyRole         = "role"
)

// New creates a session manager backed by the sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.Name = "club_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	if !isDev {
		sm.Cookie.Secure = true
		sm.Cookie.Name = "__Host-club_session"
	}
	return sm
}

// PutViewer stores v in the session and renews the token.
func PutViewer(ctx context.Context, sm *scs.SessionManager, v *model.Viewer) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyMemberID, v.MemberID)
	sm.Put(ctx, KeyTier, string(v.Tier))
	sm.Put(ctx, KeyPlatinumKind, string(v.PlatinumKind))
	sm.Put(ctx, KeyRole, v.Role)
	return nil
}

// Viewer reads the identity from the session. It returns nil when the
// session carries no member id.
func Viewer(ctx context.Context, sm *scs.SessionManager) *model.Viewer {
	id := sm.GetString(ctx, KeyMemberID)
	if id == "" {
		return nil
	}
	role := sm.GetString(ctx, KeyRole)
	if role == "" {
		role = model.RoleMember
	}
	v := &model.Viewer{
		MemberID: id,
		Tier:     tier.Parse(sm.GetString(ctx, KeyTier)),
		Role:     role,
	}
	if v.Tier == tier.Platinum {
		v.PlatinumKind = tier.ParseKind(sm.GetString(ctx, KeyPlatinumKind))
	}
	return v
}

// Clear removes the identity from the session.
func Clear(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}
