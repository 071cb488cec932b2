// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/olegiv/clubportal/internal/tier"
)

// Announcement is a short club-wide notice. Announcements are tier-less.
type Announcement struct {
	Meta
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=10000"`
	Link  string `json:"link,omitempty" validate:"omitempty,url"`
}

// Tier implements Item. Announcements are visible to every member.
func (a Announcement) Tier() (tier.Tier, bool) { return "", false }

// SortKey implements Item.
func (a Announcement) SortKey(field string) SortKey {
	if NormalizeField(field) == FieldTitle {
		return StringKey(a.Title)
	}
	return a.Meta.SortKey(field)
}

// Newsletter is a periodic member newsletter issue.
type Newsletter struct {
	Meta
	Title        string    `json:"title" validate:"required,max=200"`
	Summary      string    `json:"summary,omitempty" validate:"max=1000"`
	Body         string    `json:"body"`
	IssueDate    time.Time `json:"issue_date"`
	RequiredTier tier.Tier `json:"required_tier,omitempty" validate:"omitempty,oneof=individual business platinum"`
}

// Tier implements Item.
func (n Newsletter) Tier() (tier.Tier, bool) { return requiredTier(n.RequiredTier) }

// EventDate implements Dated.
func (n Newsletter) EventDate() time.Time { return n.IssueDate }

// SortKey implements Item.
func (n Newsletter) SortKey(field string) SortKey {
	switch NormalizeField(field) {
	case FieldTitle:
		return StringKey(n.Title)
	case FieldDate:
		return TimeKey(n.IssueDate)
	}
	return n.Meta.SortKey(field)
}

// Video is a recorded talk or tutorial.
type Video struct {
	Meta
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description,omitempty" validate:"max=5000"`
	URL             string    `json:"url" validate:"required,url"`
	DurationSeconds int       `json:"duration_seconds,omitempty" validate:"gte=0"`
	RequiredTier    tier.Tier `json:"required_tier,omitempty" validate:"omitempty,oneof=individual business platinum"`
}

// Tier implements Item.
func (v Video) Tier() (tier.Tier, bool) { return requiredTier(v.RequiredTier) }

// SortKey implements Item.
func (v Video) SortKey(field string) SortKey {
	if NormalizeField(field) == FieldTitle {
		return StringKey(v.Title)
	}
	return v.Meta.SortKey(field)
}

// ScheduleEntry is an event on the club calendar. Schedule entries are tier-less.
type ScheduleEntry struct {
	Meta
	Title     string    `json:"title" validate:"required,max=200"`
	Location  string    `json:"location,omitempty" validate:"max=200"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime   string    `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	SortOrder *int      `json:"sort_order,omitempty"`
}

// Tier implements Item. Schedule entries are visible to every member.
func (s ScheduleEntry) Tier() (tier.Tier, bool) { return "", false }

// EventDate implements Dated.
func (s ScheduleEntry) EventDate() time.Time { return s.Date }

// Sequence implements Sequenced.
func (s ScheduleEntry) Sequence() (int, bool) {
	if s.SortOrder == nil {
		return 0, false
	}
	return *s.SortOrder, true
}

// SortKey implements Item.
func (s ScheduleEntry) SortKey(field string) SortKey {
	switch NormalizeField(field) {
	case FieldTitle:
		return StringKey(s.Title)
	case FieldDate:
		// Same calendar day in the entry's own zone ties and falls through to Sequence
		y, m, d := s.Date.Date()
		return TimeKey(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	case FieldSortOrder:
		if s.SortOrder == nil {
			return NoKey()
		}
		return IntKey(int64(*s.SortOrder))
	}
	return s.Meta.SortKey(field)
}

// Article is a blog post.
type Article struct {
	Meta
	Title        string     `json:"title" validate:"required,max=200"`
	Slug         string     `json:"slug,omitempty" validate:"omitempty,max=200"`
	Excerpt      string     `json:"excerpt,omitempty" validate:"max=1000"`
	Body         string     `json:"body"`
	Author       string     `json:"author,omitempty" validate:"max=100"`
	RequiredTier tier.Tier  `json:"required_tier,omitempty" validate:"omitempty,oneof=individual business platinum"`
	PublishAt    *time.Time `json:"publish_at,omitempty"`
}

// Tier implements Item.
func (a Article) Tier() (tier.Tier, bool) { return requiredTier(a.RequiredTier) }

// DueForPublishing reports whether a scheduled, unpublished article should go live at now.
func (a Article) DueForPublishing(now time.Time) bool {
	return !a.Published && a.PublishAt != nil && !a.PublishAt.After(now)
}

// SortKey implements Item.
func (a Article) SortKey(field string) SortKey {
	switch NormalizeField(field) {
	case FieldTitle:
		return StringKey(a.Title)
	case FieldDate:
		if a.PublishAt != nil {
			return TimeKey(*a.PublishAt)
		}
		return TimeKey(a.CreatedAt)
	}
	return a.Meta.SortKey(field)
}
