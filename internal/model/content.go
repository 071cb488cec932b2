// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the club content kinds, list options and viewer
// identity shared by the content, store and handler packages.
package model

import (
	"time"

	"github.com/olegiv/clubportal/internal/tier"
)

// Kind names a content collection. It doubles as the cache entity name.
type Kind string

// Content kinds.
const (
	KindAnnouncement Kind = "announcements"
	KindNewsletter   Kind = "newsletters"
	KindVideo        Kind = "videos"
	KindSchedule     Kind = "schedule"
	KindArticle      Kind = "articles"
)

// Kinds returns every content kind.
func Kinds() []Kind {
	return []Kind{KindAnnouncement, KindNewsletter, KindVideo, KindSchedule, KindArticle}
}

// Item is implemented by every content kind.
type Item interface {
	ItemID() string
	IsPublished() bool
	// Tier returns the tier required to view the item.
	// ok is false for tier-less items, which every member may view once published.
	Tier() (t tier.Tier, ok bool)
	Created() time.Time
	Updated() time.Time
	SortKey(field string) SortKey
}

// Dated is implemented by items bound to a calendar date.
type Dated interface {
	EventDate() time.Time
}

// Sequenced is implemented by items carrying an explicit sort order
// used to break ties between items on the same date.
type Sequenced interface {
	Sequence() (int, bool)
}

// Meta holds the fields every stored document has.
// The store owns ID and timestamps; Published is set by authors.
type Meta struct {
	ID        string    `json:"id"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// ItemID returns the document id.
func (m Meta) ItemID() string { return m.ID }

// IsPublished reports whether the item is visible outside the admin view.
func (m Meta) IsPublished() bool { return m.Published }

// Created returns the creation time.
func (m Meta) Created() time.Time { return m.CreatedAt }

// Updated returns the last modification time.
func (m Meta) Updated() time.Time { return m.UpdatedAt }

// SortKey handles the fields common to all kinds.
func (m Meta) SortKey(field string) SortKey {
	switch NormalizeField(field) {
	case FieldCreatedAt:
		return TimeKey(m.CreatedAt)
	case FieldUpdatedAt:
		return TimeKey(m.UpdatedAt)
	case FieldID:
		return StringKey(m.ID)
	}
	return NoKey()
}

// GetMeta returns the stored metadata.
func (m Meta) GetMeta() Meta { return m }

// SetMeta replaces the stored metadata. Store adapters call it through a pointer.
func (m *Meta) SetMeta(meta Meta) { *m = meta }

// requiredTier implements Item.Tier for kinds with an optional required tier.
func requiredTier(t tier.Tier) (tier.Tier, bool) {
	if t == "" {
		return "", false
	}
	return t, true
}

// Document is the pointer constraint store adapters use to stamp metadata
// on a value-typed item, e.g. Document[Video] is satisfied by *Video.
type Document[T any] interface {
	*T
	Item
	GetMeta() Meta
	SetMeta(Meta)
}
