// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"html/template"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/model"
	"github.com/olegiv/clubportal/internal/render"
	"github.com/olegiv/clubportal/internal/util"
)

// ArticleView is an article with its Markdown body rendered.
type ArticleView struct {
	model.Article
	BodyHTML template.HTML `json:"body_html"`
}

// NewsletterView is a newsletter issue with its Markdown body rendered.
type NewsletterView struct {
	model.Newsletter
	BodyHTML template.HTML `json:"body_html"`
}

func presentArticle(a model.Article) (any, error) {
	html, err := render.Markdown(a.Body)
	if err != nil {
		return nil, err
	}
	return ArticleView{Article: a, BodyHTML: html}, nil
}

func presentNewsletter(n model.Newsletter) (any, error) {
	html, err := render.Markdown(n.Body)
	if err != nil {
		return nil, err
	}
	return NewsletterView{Newsletter: n, BodyHTML: html}, nil
}

// fallbackSlug is the slug base for titles with no transliterable characters.
const fallbackSlug = "article"

// prepareArticle derives a slug from the title when none is given and keeps
// slugs unique among articles. Explicit slugs must be valid and free.
func prepareArticle(admin *content.AdminReader[model.Article]) func(ctx context.Context, id string, a *model.Article) error {
	return func(ctx context.Context, id string, a *model.Article) error {
		existing, err := admin.List(ctx, model.ListOptions{})
		if err != nil {
			return fmt.Errorf("checking slugs: %w", err)
		}
		taken := make(map[string]bool, len(existing))
		for _, other := range existing {
			if other.ID != id {
				taken[other.Slug] = true
			} else if a.Slug == "" {
				// Updates without a slug keep the current one
				a.Slug = other.Slug
			}
		}

		if a.Slug != "" {
			switch {
			case !util.IsValidSlug(a.Slug):
				return ErrInvalid{"slug": "Invalid slug format (use lowercase letters, numbers, and hyphens)"}
			case taken[a.Slug]:
				return ErrInvalid{"slug": "Slug already exists"}
			}
			return nil
		}

		base := util.Slugify(a.Title)
		if base == "" {
			base = fallbackSlug
		}
		a.Slug = util.UniqueSlug(base, func(s string) bool { return taken[s] })
		return nil
	}
}
