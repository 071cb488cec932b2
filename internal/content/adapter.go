// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"

	"github.com/olegiv/clubportal/internal/model"
)

// Adapter reads raw documents of one kind from the document store.
// It applies no filtering and no ordering.
type Adapter[T model.Item] interface {
	// ListAll returns a full, unsorted snapshot of the collection.
	ListAll(ctx context.Context) ([]T, error)
	// GetByID returns the document or an error wrapping ErrNotFound.
	GetByID(ctx context.Context, id string) (T, error)
}

// Writer persists documents of one kind.
// Update, Delete and SetPublished return an error wrapping ErrNotFound for unknown ids.
type Writer[T model.Item] interface {
	Create(ctx context.Context, item T, actorID string) (string, error)
	Update(ctx context.Context, id string, item T) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
}

// Store is a full read/write adapter for one kind.
type Store[T model.Item] interface {
	Adapter[T]
	Writer[T]
}

// Backend provides a Store per content kind.
type Backend interface {
	Announcements() Store[model.Announcement]
	Newsletters() Store[model.Newsletter]
	Videos() Store[model.Video]
	Schedule() Store[model.ScheduleEntry]
	Articles() Store[model.Article]
}
