// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/clubportal/internal/model"
)

// Events reads and writes the audit event log.
type Events struct {
	db *sql.DB
}

// NewEvents creates an event log over db.
func NewEvents(db *sql.DB) *Events {
	return &Events{db: db}
}

// CreateEventParams holds the fields of a new event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	ActorID   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an event and returns its id.
func (e *Events) CreateEvent(ctx context.Context, p CreateEventParams) (int64, error) {
	if p.Metadata == "" {
		p.Metadata = "{}"
	}
	res, err := e.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, actor_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, p.ActorID, p.Metadata, p.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("creating event: %w", err)
	}
	return res.LastInsertId()
}

// ListEvents returns the most recent events, newest first.
// An empty category matches every category.
func (e *Events) ListEvents(ctx context.Context, category string, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := e.db.QueryContext(ctx,
		`SELECT id, level, category, message, actor_id, metadata, created_at
		 FROM events
		 WHERE ? = '' OR category = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		category, category, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Level, &ev.Category, &ev.Message, &ev.ActorID, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes events older than cutoff and returns how many were removed.
func (e *Events) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.RowsAffected()
}
