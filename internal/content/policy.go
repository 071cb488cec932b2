// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/tier"
)

// Policy decides whether an item may be shown.
type Policy func(item model.Item) bool

// AllowAll is the admin policy.
func AllowAll(model.Item) bool { return true }

// MemberPolicy returns the policy for an authenticated member of tier userTier:
// the item must be published and, if it requires a tier, userTier must reach it.
// An item requiring an unknown tier is hidden from members.
func MemberPolicy(userTier tier.Tier) Policy {
	return func(item model.Item) bool {
		if !item.IsPublished() {
			return false
		}
		required, ok := item.Tier()
		if !ok {
			return true
		}
		if !required.Valid() {
			return false
		}
		return tier.CanAccess(userTier, required)
	}
}
