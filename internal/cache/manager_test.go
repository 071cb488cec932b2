// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/olegiv/clubportal/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	svc := NewService(Config{
		UserTTL:  5 * time.Minute,
		AdminTTL: time.Minute,
		Clock:    mock,
	}, testutil.TestLoggerSilent())
	return svc, mock
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Config{}, nil)
	if svc.cfg.UserTTL != DefaultUserTTL {
		t.Errorf("UserTTL = %v, want %v", svc.cfg.UserTTL, DefaultUserTTL)
	}
	if svc.cfg.AdminTTL != DefaultAdminTTL {
		t.Errorf("AdminTTL = %v, want %v", svc.cfg.AdminTTL, DefaultAdminTTL)
	}
	if svc.Clock() == nil {
		t.Error("expected a default clock")
	}
}

func TestNamespaceFor_ReturnsSameInstance(t *testing.T) {
	svc, _ := newTestService(t)

	a := NamespaceFor[[]string](svc, "videos", RoleUser)
	b := NamespaceFor[[]string](svc, "videos", RoleUser)
	if a != b {
		t.Error("expected the same namespace for repeated lookups")
	}
	if a.Name() != "videos_user" {
		t.Errorf("Name = %q, want videos_user", a.Name())
	}
}

func TestNamespaceFor_RoleTTL(t *testing.T) {
	svc, _ := newTestService(t)

	user := NamespaceFor[int](svc, "articles", RoleUser)
	admin := NamespaceFor[int](svc, "articles", RoleAdmin)

	if user == nil || admin == nil {
		t.Fatal("expected namespaces")
	}
	if user.TTL() != 5*time.Minute {
		t.Errorf("user TTL = %v", user.TTL())
	}
	if admin.TTL() != time.Minute {
		t.Errorf("admin TTL = %v", admin.TTL())
	}
}

func TestNamespaceFor_DisjointRoles(t *testing.T) {
	svc, _ := newTestService(t)

	user := NamespaceFor[string](svc, "articles", RoleUser)
	admin := NamespaceFor[string](svc, "articles", RoleAdmin)

	admin.Set("all", "draft included")
	if _, ok := user.Get("all"); ok {
		t.Error("admin entry must not be visible in the user namespace")
	}
}

func TestNamespaceFor_TypeMismatchPanics(t *testing.T) {
	svc, _ := newTestService(t)
	NamespaceFor[int](svc, "videos", RoleUser)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if !strings.Contains(r.(string), "videos_user") {
			t.Errorf("panic message = %v", r)
		}
	}()
	NamespaceFor[string](svc, "videos", RoleUser)
}

func TestInvalidate_ClearsBothRoles(t *testing.T) {
	svc, _ := newTestService(t)

	user := NamespaceFor[string](svc, "videos", RoleUser)
	admin := NamespaceFor[string](svc, "videos", RoleAdmin)
	other := NamespaceFor[string](svc, "articles", RoleUser)

	user.Set("k", "v")
	admin.Set("k", "v")
	other.Set("k", "v")

	svc.Invalidate("videos")

	if _, ok := user.Get("k"); ok {
		t.Error("user namespace should be cleared")
	}
	if _, ok := admin.Get("k"); ok {
		t.Error("admin namespace should be cleared")
	}
	if _, ok := other.Get("k"); !ok {
		t.Error("other entity must not be affected")
	}
}

func TestInvalidate_UnknownEntity(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Invalidate("nothing") // must not panic
}

func TestClearAllAndStats(t *testing.T) {
	svc, _ := newTestService(t)

	a := NamespaceFor[string](svc, "videos", RoleUser)
	b := NamespaceFor[string](svc, "articles", RoleAdmin)
	a.Set("k", "v")
	a.Get("k")
	b.Get("missing")

	total := svc.TotalStats()
	if total.Hits != 1 || total.Misses != 1 || total.Items != 1 {
		t.Errorf("TotalStats = %+v", total)
	}
	if total.HitRate != 50 {
		t.Errorf("HitRate = %f, want 50", total.HitRate)
	}

	all := svc.AllStats()
	if len(all) != 2 {
		t.Fatalf("AllStats len = %d, want 2", len(all))
	}
	if all[0].Name != "articles_admin" || all[1].Name != "videos_user" {
		t.Errorf("AllStats not sorted by name: %q, %q", all[0].Name, all[1].Name)
	}

	svc.ClearAll()
	total = svc.TotalStats()
	if total.Items != 0 || total.Hits != 0 {
		t.Errorf("expected empty stats after ClearAll, got %+v", total)
	}
	if total.ResetAt == nil {
		t.Error("expected ResetAt after ClearAll")
	}
}
