// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/model"
)

// Collection stores one content kind as JSON documents in the documents table.
// The id, published flag and timestamps live in columns and override
// whatever the JSON body carries.
type Collection[T any, PT model.Document[T]] struct {
	db    *sql.DB
	kind  model.Kind
	clock clock.Clock
}

// NewCollection creates a collection for kind. A nil clock uses wall time.
func NewCollection[T any, PT model.Document[T]](db *sql.DB, kind model.Kind, clk clock.Clock) *Collection[T, PT] {
	if clk == nil {
		clk = clock.New()
	}
	return &Collection[T, PT]{db: db, kind: kind, clock: clk}
}

const documentColumns = `id, data, published, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (c *Collection[T, PT]) scan(row rowScanner) (T, error) {
	var (
		item T
		data string
		meta model.Meta
	)
	if err := row.Scan(&meta.ID, &data, &meta.Published, &meta.CreatedBy, &meta.CreatedAt, &meta.UpdatedAt); err != nil {
		return item, err
	}
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return item, fmt.Errorf("decoding %s %s: %w", c.kind, meta.ID, err)
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	meta.UpdatedAt = meta.UpdatedAt.UTC()
	PT(&item).SetMeta(meta)
	return item, nil
}

func (c *Collection[T, PT]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", c.kind, id, content.ErrNotFound)
}

// ListAll returns every document of the kind in no particular order.
func (c *Collection[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE kind = ?`, string(c.kind))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.kind, err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]T, 0)
	for rows.Next() {
		item, err := c.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.kind, err)
	}
	return items, nil
}

// GetByID returns the document with id.
func (c *Collection[T, PT]) GetByID(ctx context.Context, id string) (T, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE kind = ? AND id = ?`, string(c.kind), id)
	item, err := c.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return item, c.notFound(id)
	}
	if err != nil {
		return item, fmt.Errorf("getting %s %s: %w", c.kind, id, err)
	}
	return item, nil
}

// Create inserts item under a new id and returns it.
func (c *Collection[T, PT]) Create(ctx context.Context, item T, actorID string) (string, error) {
	now := c.clock.Now().UTC()
	meta := model.Meta{
		ID:        uuid.NewString(),
		Published: PT(&item).GetMeta().Published,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actorID,
	}
	PT(&item).SetMeta(meta)

	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", c.kind, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (kind, id, data, published, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(c.kind), meta.ID, string(data), meta.Published, meta.CreatedBy, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", c.kind, err)
	}
	return meta.ID, nil
}

// Update replaces the body and published flag of the document with id.
// Creation metadata is preserved.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, item T) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", c.kind, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var meta model.Meta
	err = tx.QueryRowContext(ctx,
		`SELECT created_by, created_at FROM documents WHERE kind = ? AND id = ?`, string(c.kind), id).
		Scan(&meta.CreatedBy, &meta.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c.notFound(id)
	}
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", c.kind, id, err)
	}

	meta.ID = id
	meta.Published = PT(&item).GetMeta().Published
	meta.CreatedAt = meta.CreatedAt.UTC()
	meta.UpdatedAt = c.clock.Now().UTC()
	PT(&item).SetMeta(meta)

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.kind, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, published = ?, updated_at = ? WHERE kind = ? AND id = ?`,
		string(data), meta.Published, meta.UpdatedAt, string(c.kind), id); err != nil {
		return fmt.Errorf("updating %s %s: %w", c.kind, id, err)
	}
	return tx.Commit()
}

// Delete removes the document with id.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE kind = ? AND id = ?`, string(c.kind), id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.kind, id, err)
	}
	return c.requireRow(res, id)
}

// SetPublished flips the published flag of the document with id.
func (c *Collection[T, PT]) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE documents SET published = ?, updated_at = ? WHERE kind = ? AND id = ?`,
		published, c.clock.Now().UTC(), string(c.kind), id)
	if err != nil {
		return fmt.Errorf("publishing %s %s: %w", c.kind, id, err)
	}
	return c.requireRow(res, id)
}

func (c *Collection[T, PT]) requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.kind, id, err)
	}
	if n == 0 {
		return c.notFound(id)
	}
	return nil
}

// Documents is the SQLite content backend.
type Documents struct {
	announcements *Collection[model.Announcement, *model.Announcement]
	newsletters   *Collection[model.Newsletter, *model.Newsletter]
	videos        *Collection[model.Video, *model.Video]
	schedule      *Collection[model.ScheduleEntry, *model.ScheduleEntry]
	articles      *Collection[model.Article, *model.Article]
}

// NewDocuments creates a backend over db. A nil clock uses wall time.
func NewDocuments(db *sql.DB, clk clock.Clock) *Documents {
	return &Documents{
		announcements: NewCollection[model.Announcement, *model.Announcement](db, model.KindAnnouncement, clk),
		newsletters:   NewCollection[model.Newsletter, *model.Newsletter](db, model.KindNewsletter, clk),
		videos:        NewCollection[model.Video, *model.Video](db, model.KindVideo, clk),
		schedule:      NewCollection[model.ScheduleEntry, *model.ScheduleEntry](db, model.KindSchedule, clk),
		articles:      NewCollection[model.Article, *model.Article](db, model.KindArticle, clk),
	}
}

// Announcements implements content.Backend.
func (d *Documents) Announcements() content.Store[model.Announcement] { return d.announcements }

// Newsletters implements content.Backend.
func (d *Documents) Newsletters() content.Store[model.Newsletter] { return d.newsletters }

// Videos implements content.Backend.
func (d *Documents) Videos() content.Store[model.Video] { return d.videos }

// Schedule implements content.Backend.
func (d *Documents) Schedule() content.Store[model.ScheduleEntry] { return d.schedule }

// Articles implements content.Backend.
func (d *Documents) Articles() content.Store[model.Article] { return d.articles }

// Ping checks the database connection.
func (d *Documents) Ping(ctx context.Context) error {
	return d.announcements.db.PingContext(ctx)
}
