// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/olegiv/clubportal/internal/cache"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/testutil"
	"github.com/olegiv/clubportal/internal/tier"
)

var errBackend = errors.New("backend down")

// memStore is an in-memory Store for videos with call counters and failure injection.
type memStore struct {
	mu     sync.Mutex
	items  map[string]model.Video
	nextID int

	listCalls atomic.Int64
	getCalls  atomic.Int64

	failReads  atomic.Bool
	failWrites atomic.Bool

	// block, when set, is waited on inside ListAll.
	block chan struct{}
}

func newMemStore(items ...model.Video) *memStore {
	s := &memStore{items: make(map[string]model.Video)}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *memStore) ListAll(ctx context.Context) ([]model.Video, error) {
	s.listCalls.Add(1)
	if s.block != nil {
		<-s.block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failReads.Load() {
		return nil, errBackend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Video, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (model.Video, error) {
	s.getCalls.Add(1)
	if s.failReads.Load() {
		return model.Video{}, errBackend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return model.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	return it, nil
}

func (s *memStore) Create(_ context.Context, item model.Video, actorID string) (string, error) {
	if s.failWrites.Load() {
		return "", errBackend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = fmt.Sprintf("new-%d", s.nextID)
	item.CreatedBy = actorID
	s.items[item.ID] = item
	return item.ID, nil
}

func (s *memStore) Update(_ context.Context, id string, item model.Video) error {
	if s.failWrites.Load() {
		return errBackend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.items[id]
	if !ok {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	item.Meta = model.Meta{ID: id, Published: item.Published, CreatedAt: prev.CreatedAt, CreatedBy: prev.CreatedBy}
	s.items[id] = item
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	if s.failWrites.Load() {
		return errBackend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

func (s *memStore) SetPublished(_ context.Context, id string, published bool) error {
	if s.failWrites.Load() {
		return errBackend
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	it.Published = published
	s.items[id] = it
	return nil
}

var base = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func video(id string, published bool, required tier.Tier, age time.Duration) model.Video {
	return model.Video{
		Meta: model.Meta{
			ID:        id,
			Published: published,
			CreatedAt: base.Add(-age),
			UpdatedAt: base.Add(-age),
		},
		Title:        "Video " + id,
		URL:          "https://videos.example.com/" + id,
		RequiredTier: required,
	}
}

type fixture struct {
	store  *memStore
	caches *cache.Service
	clock  *clock.Mock
	repo   *Repository[model.Video]
}

func newFixture(items ...model.Video) *fixture {
	mock := clock.NewMock()
	mock.Set(base)
	caches := cache.NewService(cache.Config{
		UserTTL:  5 * time.Minute,
		AdminTTL: 2 * time.Minute,
		Clock:    mock,
	}, testutil.TestLoggerSilent())
	store := newMemStore(items...)
	return &fixture{
		store:  store,
		caches: caches,
		clock:  mock,
		repo:   NewRepository[model.Video](model.KindVideo, store, caches, nil, testutil.TestLoggerSilent()),
	}
}

var (
	admin    = &model.Viewer{MemberID: "admin-1", Tier: tier.Platinum, Role: model.RoleAdmin}
	member   = &model.Viewer{MemberID: "m-1", Tier: tier.Individual, Role: model.RoleMember}
	business = &model.Viewer{MemberID: "m-2", Tier: tier.Business, Role: model.RoleMember}
)

func ids(items []model.Video) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
