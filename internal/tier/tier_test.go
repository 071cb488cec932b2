// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tier

import (
	"slices"
	"testing"
)

func TestRank(t *testing.T) {
	tests := []struct {
		tier     Tier
		expected int
	}{
		{Individual, 0},
		{Business, 1},
		{Platinum, 2},
		{"gold", 0}, // Unknown tiers fail toward least privilege
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := Rank(tt.tier); got != tt.expected {
				t.Errorf("Rank(%q) = %d, want %d", tt.tier, got, tt.expected)
			}
		})
	}
}

func TestCanAccess_FollowsRank(t *testing.T) {
	for _, a := range All() {
		for _, b := range All() {
			want := Rank(a) >= Rank(b)
			if got := CanAccess(a, b); got != want {
				t.Errorf("CanAccess(%s, %s) = %v, want %v", a, b, got, want)
			}
		}
	}
}

func TestCanAccess_Reflexive(t *testing.T) {
	for _, tr := range All() {
		if !CanAccess(tr, tr) {
			t.Errorf("CanAccess(%s, %s) = false, want true", tr, tr)
		}
	}
}

func TestCanAccess_UnknownUserTier(t *testing.T) {
	if !CanAccess("bogus", Individual) {
		t.Error("unknown tier should still see individual content")
	}
	if CanAccess("bogus", Business) {
		t.Error("unknown tier must not see business content")
	}
	if CanAccess("bogus", Platinum) {
		t.Error("unknown tier must not see platinum content")
	}
}

func TestAccessibleTiers(t *testing.T) {
	tests := []struct {
		user Tier
		want []Tier
	}{
		{Individual, []Tier{Individual}},
		{Business, []Tier{Individual, Business}},
		{Platinum, []Tier{Individual, Business, Platinum}},
		{"unknown", []Tier{Individual}},
	}

	for _, tt := range tests {
		t.Run(string(tt.user), func(t *testing.T) {
			got := AccessibleTiers(tt.user)
			if !slices.Equal(got, tt.want) {
				t.Errorf("AccessibleTiers(%q) = %v, want %v", tt.user, got, tt.want)
			}
		})
	}
}

func TestAccessibleTiers_UpwardClosed(t *testing.T) {
	for _, a := range All() {
		for _, b := range AccessibleTiers(a) {
			for _, higher := range All() {
				if Rank(higher) < Rank(a) {
					continue
				}
				if !slices.Contains(AccessibleTiers(higher), b) {
					t.Errorf("%s reaches %s but higher tier %s does not", a, b, higher)
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"individual", Individual},
		{"Business", Business},
		{" PLATINUM ", Platinum},
		{"free", Individual},
		{"", Individual},
	}

	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if got := ParseKind("business"); got != PlatinumBusiness {
		t.Errorf("ParseKind(business) = %q", got)
	}
	if got := ParseKind(""); got != PlatinumIndividual {
		t.Errorf("ParseKind(\"\") = %q", got)
	}
}
