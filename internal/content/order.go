// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"slices"

	"github.com/olegiv/clubportal/internal/model"
)

// selectItems filters, orders and truncates a collection snapshot.
// The input slice is not modified.
func selectItems[T model.Item](items []T, allow Policy, opts model.ListOptions) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if allow(item) && opts.InRange(item) {
			out = append(out, item)
		}
	}

	sortItems(out, opts.OrderBy, opts.OrderDirection)

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// sortItems stable-sorts by field in the given direction. Items missing the
// field sort last. Ties are broken by Sequence ascending, items without a
// sequence last.
func sortItems[T model.Item](items []T, field string, dir model.Direction) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := compareKeys(a.SortKey(field), b.SortKey(field), dir == model.Desc); c != 0 {
			return c
		}
		return compareSequence(a, b)
	})
}

func compareKeys(a, b model.SortKey, desc bool) int {
	switch {
	case a.Missing() && b.Missing():
		return 0
	case a.Missing():
		return 1
	case b.Missing():
		return -1
	}
	c := a.Compare(b)
	if desc {
		return -c
	}
	return c
}

func compareSequence(a, b model.Item) int {
	sa, aok := a.(model.Sequenced)
	sb, bok := b.(model.Sequenced)
	if !aok || !bok {
		return 0
	}
	na, aHas := sa.Sequence()
	nb, bHas := sb.Sequence()
	switch {
	case !aHas && !bHas:
		return 0
	case !aHas:
		return 1
	case !bHas:
		return -1
	}
	return na - nb
}
