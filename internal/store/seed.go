// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/tier"
	"github.com/olegiv/clubportal/internal/util"
)

// SeedActor is recorded as the author of seeded documents.
const SeedActor = "seed"

// Seed creates sample content for an empty backend.
// It does nothing if any announcement already exists.
func Seed(ctx context.Context, backend content.Backend, now time.Time, logger *slog.Logger) error {
	existing, err := backend.Announcements().ListAll(ctx)
	if err != nil {
		return fmt.Errorf("checking for existing content: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("content already present, skipping seed")
		return nil
	}

	now = now.UTC()
	day := now.Truncate(24 * time.Hour)
	first, second := 1, 2
	later := now.Add(7 * 24 * time.Hour)

	announcements := []model.Announcement{
		{Meta: model.Meta{Published: true}, Title: "Welcome to the club portal", Body: "Member content now lives here."},
		{Meta: model.Meta{Published: false}, Title: "Annual general meeting", Body: "Agenda to follow."},
	}
	newsletters := []model.Newsletter{
		{Meta: model.Meta{Published: true}, Title: "Monthly digest", Summary: "What happened this month.", IssueDate: day},
		{Meta: model.Meta{Published: true}, Title: "Business briefing", Summary: "Quarterly market notes.", IssueDate: day, RequiredTier: tier.Business},
	}
	videos := []model.Video{
		{Meta: model.Meta{Published: true}, Title: "Getting started", URL: "https://videos.example.com/getting-started", DurationSeconds: 300},
		{Meta: model.Meta{Published: true}, Title: "Platinum masterclass", URL: "https://videos.example.com/masterclass", DurationSeconds: 3600, RequiredTier: tier.Platinum},
	}
	schedule := []model.ScheduleEntry{
		{Meta: model.Meta{Published: true}, Title: "Morning networking", Location: "Main hall", Date: day, StartTime: "09:00", EndTime: "10:00", SortOrder: &first},
		{Meta: model.Meta{Published: true}, Title: "Keynote", Location: "Main hall", Date: day, StartTime: "10:30", EndTime: "11:30", SortOrder: &second},
	}
	articles := []model.Article{
		{Meta: model.Meta{Published: true}, Title: "How we run the club", Excerpt: "A look behind the scenes.", Body: "# Behind the scenes\n\nVolunteers, mostly.", Author: "Editorial"},
		{Title: "Upcoming changes for business members", Body: "Details inside.", Author: "Editorial", RequiredTier: tier.Business, PublishAt: &later},
	}
	for i := range articles {
		articles[i].Slug = util.Slugify(articles[i].Title)
	}

	if err := seedKind(ctx, backend.Announcements(), announcements); err != nil {
		return err
	}
	if err := seedKind(ctx, backend.Newsletters(), newsletters); err != nil {
		return err
	}
	if err := seedKind(ctx, backend.Videos(), videos); err != nil {
		return err
	}
	if err := seedKind(ctx, backend.Schedule(), schedule); err != nil {
		return err
	}
	if err := seedKind(ctx, backend.Articles(), articles); err != nil {
		return err
	}

	logger.Info("seeded sample content",
		"announcements", len(announcements),
		"newsletters", len(newsletters),
		"videos", len(videos),
		"schedule", len(schedule),
		"articles", len(articles),
	)
	return nil
}

func seedKind[T model.Item](ctx context.Context, store content.Store[T], items []T) error {
	for _, item := range items {
		if _, err := store.Create(ctx, item, SeedActor); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}
	return nil
}
