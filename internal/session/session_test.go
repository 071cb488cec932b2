// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/testutil/dbtest"
	"github.com/olegiv/clubportal/internal/tier"
)

func TestNew_DevMode(t *testing.T) {
	sm := New(dbtest.TestMemoryDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name != "club_session" {
		t.Errorf("Cookie.Name = %q, want club_session", sm.Cookie.Name)
	}
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly || sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie settings: %+v", sm.Cookie)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(dbtest.TestMemoryDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-club_session" {
		t.Errorf("Cookie.Name = %q, want __Host-club_session", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("Cookie.Path = %q, want /", sm.Cookie.Path)
	}
}

// roundTrip stores in during one request and returns what Viewer reads in the next.
func roundTrip(t *testing.T, sm *scs.SessionManager, in *model.Viewer) *model.Viewer {
	t.Helper()

	put := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if in != nil {
			if err := PutViewer(r.Context(), sm, in); err != nil {
				t.Errorf("PutViewer: %v", err)
			}
		}
	}))
	rec := httptest.NewRecorder()
	put.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var out *model.Viewer
	get := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out = Viewer(r.Context(), sm)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	get.ServeHTTP(httptest.NewRecorder(), req)
	return out
}

func TestViewerRoundTrip(t *testing.T) {
	sm := New(dbtest.TestMemoryDB(t), true)

	got := roundTrip(t, sm, &model.Viewer{
		MemberID:     "m-42",
		Tier:         tier.Platinum,
		PlatinumKind: tier.PlatinumBusiness,
		Role:         model.RoleAdmin,
	})
	if got == nil {
		t.Fatal("expected a viewer")
	}
	if got.MemberID != "m-42" || got.Tier != tier.Platinum || got.PlatinumKind != tier.PlatinumBusiness || !got.IsAdmin() {
		t.Errorf("Viewer = %+v", got)
	}
}

func TestViewerDefaults(t *testing.T) {
	sm := New(dbtest.TestMemoryDB(t), true)

	got := roundTrip(t, sm, &model.Viewer{MemberID: "m-1", Tier: "gold"})
	if got == nil {
		t.Fatal("expected a viewer")
	}
	if got.Tier != tier.Individual {
		t.Errorf("unknown tier should fall back to individual, got %q", got.Tier)
	}
	if got.Role != model.RoleMember {
		t.Errorf("Role = %q, want member", got.Role)
	}
	if got.PlatinumKind != "" {
		t.Errorf("PlatinumKind = %q for a non-platinum member", got.PlatinumKind)
	}
}

func TestViewerAnonymous(t *testing.T) {
	sm := New(dbtest.TestMemoryDB(t), true)

	if got := roundTrip(t, sm, nil); got != nil {
		t.Errorf("Viewer = %+v, want nil", got)
	}
}
