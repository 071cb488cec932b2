// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"cmp"
	"strings"
	"time"
)

// Sortable field names.
const (
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldID        = "id"
	FieldTitle     = "title"
	FieldDate      = "date"
	FieldSortOrder = "sort_order"
)

// fieldAliases maps lowercased names with separators removed to canonical field names.
var fieldAliases = map[string]string{
	"createdat": FieldCreatedAt,
	"created":   FieldCreatedAt,
	"updatedat": FieldUpdatedAt,
	"updated":   FieldUpdatedAt,
	"id":        FieldID,
	"title":     FieldTitle,
	"date":      FieldDate,
	"eventdate": FieldDate,
	"issuedate": FieldDate,
	"sortorder": FieldSortOrder,
	"order":     FieldSortOrder,
}

// NormalizeField maps "createdAt", "created_at" and "CreatedAt" to the same canonical name.
// Unknown names are returned lowercased.
func NormalizeField(field string) string {
	f := strings.ToLower(strings.TrimSpace(field))
	if canon, ok := fieldAliases[strings.NewReplacer("_", "", "-", "").Replace(f)]; ok {
		return canon
	}
	return f
}

// KnownField reports whether field names a sortable field after normalization.
func KnownField(field string) bool {
	switch NormalizeField(field) {
	case FieldCreatedAt, FieldUpdatedAt, FieldID, FieldTitle, FieldDate, FieldSortOrder:
		return true
	}
	return false
}

type sortKind uint8

const (
	sortNone sortKind = iota
	sortTime
	sortString
	sortInt
)

// SortKey is the value of an item's field used for ordering.
type SortKey struct {
	kind sortKind
	t    time.Time
	s    string
	n    int64
}

// TimeKey returns a key ordering by time. The zero time counts as missing.
func TimeKey(t time.Time) SortKey {
	if t.IsZero() {
		return NoKey()
	}
	return SortKey{kind: sortTime, t: t}
}

// StringKey returns a key ordering case-insensitively by s.
func StringKey(s string) SortKey {
	return SortKey{kind: sortString, s: strings.ToLower(s)}
}

// IntKey returns a key ordering by n.
func IntKey(n int64) SortKey {
	return SortKey{kind: sortInt, n: n}
}

// NoKey marks a missing value. Missing values sort last in either direction.
func NoKey() SortKey {
	return SortKey{}
}

// Missing reports whether the key has no value.
func (k SortKey) Missing() bool {
	return k.kind == sortNone
}

// Compare orders two present keys. Keys of different kinds compare by kind.
func (k SortKey) Compare(o SortKey) int {
	if k.kind != o.kind {
		return cmp.Compare(k.kind, o.kind)
	}
	switch k.kind {
	case sortTime:
		return k.t.Compare(o.t)
	case sortString:
		return strings.Compare(k.s, o.s)
	case sortInt:
		return cmp.Compare(k.n, o.n)
	}
	return 0
}
