// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/olegiv/clubportal/internal/tier"

// RoleAdmin is the role name granting access to the admin console.
const RoleAdmin = "admin"

// RoleMember is the default role of an authenticated member.
const RoleMember = "member"

// Viewer is the identity a request is served for.
// It is supplied by the session, never derived here. A nil *Viewer is anonymous.
type Viewer struct {
	MemberID     string            `json:"member_id"`
	Tier         tier.Tier         `json:"tier"`
	PlatinumKind tier.PlatinumKind `json:"platinum_kind,omitempty"`
	Role         string            `json:"role"`
}

// SystemViewer is the actor used for writes made by the application itself.
var SystemViewer = &Viewer{MemberID: "system", Tier: tier.Platinum, Role: RoleAdmin}

// Authenticated reports whether v identifies a member.
func (v *Viewer) Authenticated() bool {
	return v != nil && v.MemberID != ""
}

// IsAdmin reports whether v may use the admin console.
func (v *Viewer) IsAdmin() bool {
	return v.Authenticated() && v.Role == RoleAdmin
}

// EffectiveTier returns the viewer's tier, falling back to the lowest tier
// when it is missing or unknown.
func (v *Viewer) EffectiveTier() tier.Tier {
	if v == nil {
		return tier.Lowest
	}
	return tier.Parse(string(v.Tier))
}

// ActorID returns the id recorded as the author of writes.
func (v *Viewer) ActorID() string {
	if v == nil {
		return ""
	}
	return v.MemberID
}
