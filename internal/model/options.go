// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Asc for "asc" (any case) and Desc otherwise.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// ListOptions parameterizes a list query. The JSON form is used as the cache key,
// so field order here is part of the key format.
type ListOptions struct {
	// PublishedOnly is forced on by user readers and ignored by admin readers.
	PublishedOnly  bool       `json:"published_only,omitempty"`
	OrderBy        string     `json:"order_by,omitempty"`
	OrderDirection Direction  `json:"order_direction,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
}

// Normalize fills in defaults so equivalent options serialize identically.
// Ordering defaults to creation time, newest first.
func (o ListOptions) Normalize() ListOptions {
	if o.OrderBy == "" {
		o.OrderBy = FieldCreatedAt
	}
	o.OrderBy = NormalizeField(o.OrderBy)

	if o.OrderDirection == "" {
		o.OrderDirection = Desc
	} else {
		o.OrderDirection = ParseDirection(string(o.OrderDirection))
	}

	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.StartDate != nil {
		t := o.StartDate.UTC()
		o.StartDate = &t
	}
	if o.EndDate != nil {
		t := o.EndDate.UTC()
		o.EndDate = &t
	}
	return o
}

// InRange reports whether item falls inside the date range.
// Items without a date are only excluded when a range is set.
func (o ListOptions) InRange(item Item) bool {
	if o.StartDate == nil && o.EndDate == nil {
		return true
	}
	dated, ok := item.(Dated)
	if !ok {
		return false
	}
	d := dated.EventDate()
	if o.StartDate != nil && d.Before(*o.StartDate) {
		return false
	}
	if o.EndDate != nil && d.After(*o.EndDate) {
		return false
	}
	return true
}
