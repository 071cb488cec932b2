// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/tier"
)

func TestUserListHidesUnpublished(t *testing.T) {
	f := newFixture(
		video("pub", true, "", time.Hour),
		video("draft", false, "", 2*time.Hour),
	)
	ctx := context.Background()

	got, err := f.repo.User.List(ctx, tier.Platinum, model.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Equal(ids(got), []string{"pub"}) {
		t.Errorf("user list = %v, want [pub]", ids(got))
	}

	all, err := f.repo.Admin.List(ctx, model.ListOptions{PublishedOnly: true})
	if err != nil {
		t.Fatalf("admin List: %v", err)
	}
	if !slices.Equal(ids(all), []string{"pub", "draft"}) {
		t.Errorf("admin list = %v, want [pub draft]", ids(all))
	}
}

func TestUserListTierVisibility(t *testing.T) {
	f := newFixture(
		video("open", true, "", time.Hour),
		video("ind", true, tier.Individual, 2*time.Hour),
		video("biz", true, tier.Business, 3*time.Hour),
		video("plat", true, tier.Platinum, 4*time.Hour),
		video("weird", true, tier.Tier("gold"), 5*time.Hour),
	)
	ctx := context.Background()

	tests := []struct {
		tier tier.Tier
		want []string
	}{
		{tier.Individual, []string{"open", "ind"}},
		{tier.Business, []string{"open", "ind", "biz"}},
		{tier.Platinum, []string{"open", "ind", "biz", "plat"}},
		{tier.Tier("unknown"), []string{"open", "ind"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got, err := f.repo.User.List(ctx, tt.tier, model.ListOptions{})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if !slices.Equal(ids(got), tt.want) {
				t.Errorf("List(%s) = %v, want %v", tt.tier, ids(got), tt.want)
			}
		})
	}
}

func TestUserListIsCachedPerTier(t *testing.T) {
	f := newFixture(video("a", true, tier.Business, time.Hour))
	ctx := context.Background()

	for range 3 {
		if _, err := f.repo.User.List(ctx, tier.Business, model.ListOptions{}); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if n := f.store.listCalls.Load(); n != 1 {
		t.Fatalf("ListAll calls = %d, want 1", n)
	}

	got, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("individual sees %v, want nothing", ids(got))
	}
	if n := f.store.listCalls.Load(); n != 2 {
		t.Errorf("ListAll calls = %d, want 2 after a different tier", n)
	}
}

func TestUserListOptionsShareKeyAfterNormalize(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour))
	ctx := context.Background()

	if _, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{OrderBy: "createdAt", OrderDirection: "DESC"}); err != nil {
		t.Fatal(err)
	}
	if n := f.store.listCalls.Load(); n != 1 {
		t.Errorf("ListAll calls = %d, want 1 for equivalent options", n)
	}
}

func TestUserListExpiresAfterTTL(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour))
	ctx := context.Background()

	if _, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{}); err != nil {
		t.Fatal(err)
	}

	// A write that bypasses the gateway is only seen once the entry expires
	f.store.mu.Lock()
	f.store.items["b"] = video("b", true, "", 0)
	f.store.mu.Unlock()

	f.clock.Add(5 * time.Minute)
	got, _ := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	if !slices.Equal(ids(got), []string{"a"}) {
		t.Errorf("at TTL list = %v, want cached [a]", ids(got))
	}

	f.clock.Add(time.Second)
	got, _ = f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	if !slices.Equal(ids(got), []string{"b", "a"}) {
		t.Errorf("after TTL list = %v, want [b a]", ids(got))
	}
}

func TestUserListReturnsCopies(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour), video("b", true, "", 2*time.Hour))
	ctx := context.Background()

	first, _ := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	first[0] = video("mutated", true, "", 0)

	second, _ := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	if second[0].ID != "a" {
		t.Errorf("cached list was modified through a returned slice: %v", ids(second))
	}
}

func TestUserGet(t *testing.T) {
	f := newFixture(
		video("open", true, "", time.Hour),
		video("biz", true, tier.Business, time.Hour),
		video("draft", false, "", time.Hour),
	)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		tier    tier.Tier
		wantErr error
	}{
		{"published tier-less", "open", tier.Individual, nil},
		{"business for business", "biz", tier.Business, nil},
		{"business for platinum", "biz", tier.Platinum, nil},
		{"business for individual", "biz", tier.Individual, ErrNotFound},
		{"unpublished", "draft", tier.Platinum, ErrNotFound},
		{"missing", "nope", tier.Platinum, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.repo.User.Get(ctx, tt.id, tt.tier)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Get(%s, %s) error = %v, want %v", tt.id, tt.tier, err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != tt.id {
				t.Errorf("Get returned %q, want %q", got.ID, tt.id)
			}
		})
	}
}

func TestUserGetCachesPublishedOnly(t *testing.T) {
	f := newFixture(
		video("biz", true, tier.Business, time.Hour),
		video("draft", false, "", time.Hour),
	)
	ctx := context.Background()

	// The cached item is shared across tiers; the tier check runs on every call
	if _, err := f.repo.User.Get(ctx, "biz", tier.Business); err != nil {
		t.Fatal(err)
	}
	if _, err := f.repo.User.Get(ctx, "biz", tier.Individual); !errors.Is(err, ErrNotFound) {
		t.Errorf("individual Get = %v, want ErrNotFound", err)
	}
	if n := f.store.getCalls.Load(); n != 1 {
		t.Errorf("GetByID calls = %d, want 1", n)
	}

	for range 2 {
		if _, err := f.repo.User.Get(ctx, "draft", tier.Platinum); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(draft) error = %v, want ErrNotFound", err)
		}
	}
	if n := f.store.getCalls.Load(); n != 3 {
		t.Errorf("GetByID calls = %d, want 3: unpublished items are not cached", n)
	}
}

func TestAnonymousViewer(t *testing.T) {
	f := newFixture(video("open", true, "", time.Hour))
	ctx := context.Background()

	for _, v := range []*model.Viewer{nil, {}} {
		got, err := f.repo.User.ListFor(ctx, v, model.ListOptions{})
		if err != nil || len(got) != 0 {
			t.Errorf("ListFor(%v) = %v, %v; want empty", v, ids(got), err)
		}
		if _, err := f.repo.User.GetFor(ctx, v, "open"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetFor(%v) error = %v, want ErrNotFound", v, err)
		}
	}
	if n := f.store.listCalls.Load() + f.store.getCalls.Load(); n != 0 {
		t.Errorf("anonymous requests reached the store %d times", n)
	}

	got, err := f.repo.User.ListFor(ctx, member, model.ListOptions{})
	if err != nil || len(got) != 1 {
		t.Errorf("ListFor(member) = %v, %v", ids(got), err)
	}
}

func TestAdminReadsDoNotLeakToUsers(t *testing.T) {
	f := newFixture(
		video("open", true, "", time.Hour),
		video("draft", false, "", 2*time.Hour),
		video("plat", true, tier.Platinum, 3*time.Hour),
	)
	ctx := context.Background()

	all, err := f.repo.Admin.List(ctx, model.ListOptions{})
	if err != nil || len(all) != 3 {
		t.Fatalf("admin List = %v, %v", ids(all), err)
	}
	for _, id := range []string{"draft", "plat"} {
		if _, err := f.repo.Admin.Get(ctx, id); err != nil {
			t.Fatalf("admin Get(%s): %v", id, err)
		}
	}

	got, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids(got), []string{"open"}) {
		t.Errorf("individual list after admin reads = %v, want [open]", ids(got))
	}
	for _, id := range []string{"draft", "plat"} {
		if _, err := f.repo.User.Get(ctx, id, tier.Individual); !errors.Is(err, ErrNotFound) {
			t.Errorf("individual Get(%s) after admin read = %v, want ErrNotFound", id, err)
		}
	}
	if _, err := f.repo.User.Get(ctx, "draft", tier.Platinum); !errors.Is(err, ErrNotFound) {
		t.Errorf("platinum Get(draft) after admin read = %v, want ErrNotFound", err)
	}
}

func TestAdminGet(t *testing.T) {
	f := newFixture(video("draft", false, tier.Platinum, time.Hour))
	ctx := context.Background()

	got, err := f.repo.Admin.Get(ctx, "draft")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "draft" {
		t.Errorf("Get returned %q", got.ID)
	}

	if _, err := f.repo.Admin.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpstreamFailureIsNotCached(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour))
	ctx := context.Background()
	f.store.failReads.Store(true)

	_, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("List error = %v, want *UpstreamError", err)
	}
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, errBackend) {
		t.Errorf("error %v should match ErrUpstream and the backend error", err)
	}
	if upErr.Kind != model.KindVideo || upErr.Op != "list" {
		t.Errorf("UpstreamError = %+v", upErr)
	}

	if _, err := f.repo.Admin.Get(ctx, "a"); !errors.Is(err, ErrUpstream) {
		t.Errorf("Get error = %v, want upstream", err)
	}

	f.store.failReads.Store(false)
	got, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	if err != nil || len(got) != 1 {
		t.Errorf("List after recovery = %v, %v", ids(got), err)
	}
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour))
	f.store.block = make(chan struct{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
			if err != nil || len(got) != 1 {
				t.Errorf("List = %v, %v", ids(got), err)
			}
		}()
	}

	for f.store.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(f.store.block)
	wg.Wait()

	if n := f.store.listCalls.Load(); n != 1 {
		t.Errorf("ListAll calls = %d, want 1", n)
	}
}

func TestFetchStraddlingInvalidationIsDiscarded(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour))
	f.store.block = make(chan struct{})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.repo.User.List(ctx, tier.Individual, model.ListOptions{})
	}()

	for f.store.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	f.caches.Invalidate(string(model.KindVideo))
	close(f.store.block)
	<-done

	if _, err := f.repo.User.List(ctx, tier.Individual, model.ListOptions{}); err != nil {
		t.Fatal(err)
	}
	if n := f.store.listCalls.Load(); n != 2 {
		t.Errorf("ListAll calls = %d, want 2: the stale fetch must not populate the cache", n)
	}
}

func TestSharedFetchSurvivesCancelledCaller(t *testing.T) {
	f := newFixture(video("a", true, "", time.Hour))
	f.store.block = make(chan struct{})

	first, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := f.repo.User.List(first, tier.Individual, model.ListOptions{})
		firstDone <- err
	}()
	for f.store.listCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	secondDone := make(chan error, 1)
	var got []model.Video
	go func() {
		var err error
		got, err = f.repo.User.List(context.Background(), tier.Individual, model.ListOptions{})
		secondDone <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	close(f.store.block)

	if err := <-secondDone; err != nil {
		t.Fatalf("waiting caller got %v after the first caller was cancelled", err)
	}
	if !slices.Equal(ids(got), []string{"a"}) {
		t.Errorf("List = %v, want [a]", ids(got))
	}
	if err := <-firstDone; errors.Is(err, ErrUpstream) {
		t.Errorf("cancelled caller got upstream error %v", err)
	}
	if n := f.store.listCalls.Load(); n != 1 {
		t.Errorf("ListAll calls = %d, want 1", n)
	}
}
