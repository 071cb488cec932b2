// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/olegiv/clubportal/internal/model"
)

func TestParseListOptions(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantErrs []string
		check    func(t *testing.T, o model.ListOptions)
	}{
		{
			name:  "empty",
			query: "",
			check: func(t *testing.T, o model.ListOptions) {
				if o.OrderBy != "" || o.Limit != 0 || o.StartDate != nil {
					t.Errorf("options = %+v, want zero", o)
				}
			},
		},
		{
			name:  "all fields",
			query: "order_by=date&order=ASC&limit=10&start=2026-02-01&end=2026-02-28",
			check: func(t *testing.T, o model.ListOptions) {
				if o.OrderBy != "date" || o.OrderDirection != model.Asc || o.Limit != 10 {
					t.Errorf("options = %+v", o)
				}
				wantEnd := time.Date(2026, 2, 28, 23, 59, 59, 999999999, time.UTC)
				if o.EndDate == nil || !o.EndDate.Equal(wantEnd) {
					t.Errorf("EndDate = %v, want end of day %v", o.EndDate, wantEnd)
				}
			},
		},
		{
			name:  "rfc3339 dates are exact",
			query: "start=2026-02-01T10:00:00Z&end=2026-02-01T12:00:00Z",
			check: func(t *testing.T, o model.ListOptions) {
				if !o.EndDate.Equal(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)) {
					t.Errorf("EndDate = %v", o.EndDate)
				}
			},
		},
		{name: "unknown field", query: "order_by=price", wantErrs: []string{"order_by"}},
		{name: "bad direction", query: "order=sideways", wantErrs: []string{"order"}},
		{name: "bad limit", query: "limit=abc", wantErrs: []string{"limit"}},
		{name: "limit too large", query: "limit=501", wantErrs: []string{"limit"}},
		{name: "bad date", query: "start=yesterday", wantErrs: []string{"start"}},
		{name: "inverted range", query: "start=2026-03-01&end=2026-02-01", wantErrs: []string{"end"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			opts, errs := parseListOptions(q)
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("errors = %v, want keys %v", errs, tt.wantErrs)
			}
			for _, k := range tt.wantErrs {
				if _, ok := errs[k]; !ok {
					t.Errorf("missing error for %q in %v", k, errs)
				}
			}
			if tt.check != nil {
				tt.check(t, opts)
			}
		})
	}
}
