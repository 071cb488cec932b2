// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that copies WARN and ERROR records
// into the audit event table.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/store"
)

// Attribute keys with special meaning to the event log.
const (
	AttrCategory = "category"
	AttrActor    = "actor"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// records at or above its level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events *store.Events
	level  slog.Level
	attrs  []slog.Attr // accumulated through WithAttrs
	group  string
}

// NewEventLogHandler creates a handler that records WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a handler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:  inner,
		events: store.NewEvents(db),
		level:  level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeEvent(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *EventLogHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// writeEvent stores r in the event log. Failures are dropped: the record has
// already reached the inner handler.
func (h *EventLogHandler) writeEvent(r slog.Record) {
	attrs := append([]slog.Attr(nil), h.attrs...)
	var recordAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		recordAttrs = append(recordAttrs, a)
		return true
	})
	attrs = append(attrs, h.qualify(recordAttrs)...)

	var category, actor string
	metadata := make(map[string]any, len(attrs))
	for _, a := range attrs {
		switch a.Key {
		case AttrCategory:
			category = a.Value.String()
		case AttrActor:
			actor = a.Value.String()
		default:
			metadata[a.Key] = a.Value.Resolve().Any()
		}
	}
	if category == "" {
		category = inferCategory(r.Message)
	}

	meta := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(stringify(metadata)); err == nil {
			meta = string(b)
		}
	}

	// Background context so the event survives a cancelled request
	_, _ = h.events.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		ActorID:   actor,
		Metadata:  meta,
		CreatedAt: r.Time,
	})
}

// stringify converts values json cannot encode, such as errors, to strings.
func stringify(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case error:
			m[k] = val.Error()
		case string, bool, int, int64, uint64, float64:
		default:
			if _, err := json.Marshal(val); err != nil {
				m[k] = slog.AnyValue(val).String()
			}
		}
	}
	return m
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "denied") || strings.Contains(msg, "session"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "content") || strings.Contains(msg, "publish"):
		return model.EventCategoryContent
	case strings.Contains(msg, "config") || strings.Contains(msg, "setting"):
		return model.EventCategoryConfig
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}
