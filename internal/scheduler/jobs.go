// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/logging"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/store"
)

// Job names.
const (
	JobPublishArticles = "publish-articles"
	JobPruneEvents     = "prune-events"
)

// DefaultEventRetention is how long audit events are kept.
const DefaultEventRetention = 90 * 24 * time.Hour

// Schedulable is an item that can go live at a set time.
type Schedulable interface {
	model.Item
	DueForPublishing(now time.Time) bool
}

// PublishDue returns a job that publishes every item of repo whose publish
// time has passed. Writes go through the gateway as the system actor, so
// caches are invalidated exactly as for manual publishing.
func PublishDue[T Schedulable](repo *content.Repository[T], clk clock.Clock, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		items, err := repo.Admin.List(ctx, model.ListOptions{})
		if err != nil {
			return fmt.Errorf("listing %s: %w", repo.Kind, err)
		}

		now := clk.Now()
		var errs []error
		published := 0
		for _, it := range items {
			if !it.DueForPublishing(now) {
				continue
			}
			if err := repo.Gateway.SetPublished(ctx, model.SystemViewer, it.ItemID(), true); err != nil {
				logger.Error("failed to publish scheduled content",
					logging.AttrCategory, model.EventCategoryContent,
					"kind", repo.Kind,
					"id", it.ItemID(),
					"error", err,
				)
				errs = append(errs, err)
				continue
			}
			published++
		}
		if published > 0 {
			logger.Info("published scheduled content", "kind", repo.Kind, "count", published)
		}
		return errors.Join(errs...)
	}
}

// PruneEvents returns a job deleting audit events older than retention.
func PruneEvents(events *store.Events, retention time.Duration, clk clock.Clock, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		n, err := events.DeleteEventsBefore(ctx, clk.Now().Add(-retention))
		if err != nil {
			return fmt.Errorf("pruning events: %w", err)
		}
		if n > 0 {
			logger.Info("pruned old events", "count", n)
		}
		return nil
	}
}
