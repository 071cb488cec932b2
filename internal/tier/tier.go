// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tier defines the membership tier hierarchy used to gate content.
// Tiers are totally ordered: individual < business < platinum.
package tier

import "strings"

// Tier is a membership level.
type Tier string

// Membership tiers, lowest first.
const (
	Individual Tier = "individual"
	Business   Tier = "business"
	Platinum   Tier = "platinum"
)

// PlatinumKind distinguishes individual and business platinum members.
// It does not affect access: every platinum member ranks as Platinum.
type PlatinumKind string

// Platinum sub-kinds.
const (
	PlatinumIndividual PlatinumKind = "individual"
	PlatinumBusiness   PlatinumKind = "business"
)

// Lowest is the tier assumed for missing or unrecognized input.
const Lowest = Individual

var ranks = map[Tier]int{
	Individual: 0,
	Business:   1,
	Platinum:   2,
}

// All returns every tier ordered from lowest to highest rank.
func All() []Tier {
	return []Tier{Individual, Business, Platinum}
}

// Rank returns the position of t in the hierarchy.
// Unknown tiers rank as Lowest.
func Rank(t Tier) int {
	if r, ok := ranks[t]; ok {
		return r
	}
	return ranks[Lowest]
}

// CanAccess reports whether a member of tier user may view content requiring tier required.
func CanAccess(user, required Tier) bool {
	return Rank(user) >= Rank(required)
}

// AccessibleTiers returns every tier at or below the rank of user, lowest first.
func AccessibleTiers(user Tier) []Tier {
	r := Rank(user)
	out := make([]Tier, 0, len(ranks))
	for _, t := range All() {
		if ranks[t] <= r {
			out = append(out, t)
		}
	}
	return out
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := ranks[t]
	return ok
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}

// Parse converts s to a Tier. Matching is case-insensitive.
// Empty or unknown values fall back to Lowest.
func Parse(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return Lowest
}

// ParseKind converts s to a PlatinumKind, defaulting to PlatinumIndividual.
func ParseKind(s string) PlatinumKind {
	if PlatinumKind(strings.ToLower(strings.TrimSpace(s))) == PlatinumBusiness {
		return PlatinumBusiness
	}
	return PlatinumIndividual
}
