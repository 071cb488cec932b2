// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/clubportal/internal/model"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 500

// parseListOptions reads order_by, order, limit, start and end from q.
// Dates are RFC3339 or YYYY-MM-DD; a bare end date covers the whole day.
func parseListOptions(q url.Values) (model.ListOptions, map[string]string) {
	var opts model.ListOptions
	errs := make(map[string]string)

	if v := q.Get("order_by"); v != "" {
		if !model.KnownField(v) {
			errs["order_by"] = "Unknown sort field"
		}
		opts.OrderBy = v
	}

	switch v := strings.ToLower(q.Get("order")); v {
	case "":
	case "asc", "desc":
		opts.OrderDirection = model.Direction(v)
	default:
		errs["order"] = "Order must be 'asc' or 'desc'"
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil || n < 0:
			errs["limit"] = "Limit must be a non-negative integer"
		case n > MaxLimit:
			errs["limit"] = "Limit must be at most " + strconv.Itoa(MaxLimit)
		default:
			opts.Limit = n
		}
	}

	if v := q.Get("start"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			errs["start"] = "Invalid date, use RFC3339 or YYYY-MM-DD"
		} else {
			opts.StartDate = &t
		}
	}
	if v := q.Get("end"); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			errs["end"] = "Invalid date, use RFC3339 or YYYY-MM-DD"
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			opts.EndDate = &t
		}
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.EndDate.Before(*opts.StartDate) {
		errs["end"] = "End must not be before start"
	}

	if len(errs) > 0 {
		return opts, errs
	}
	return opts, nil
}

func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t, false, err
}
