// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package redisdoc is a content backend that keeps documents in Redis hashes,
// one hash per kind keyed by document id.
package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/clubportal/internal/content"
	"github.com/olegiv/clubportal/internal/model"
)

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to every hash key (e.g., "clubportal:")
	Prefix string

	// PoolSize is the maximum number of connections (0 = use default)
	PoolSize int

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// Clock stamps document timestamps. Nil means wall time.
	Clock clock.Clock
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Prefix:         "clubportal:",
		PoolSize:       10,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// Backend implements content.Backend on Redis.
type Backend struct {
	client *redis.Client

	announcements *Collection[model.Announcement, *model.Announcement]
	newsletters   *Collection[model.Newsletter, *model.Newsletter]
	videos        *Collection[model.Video, *model.Video]
	schedule      *Collection[model.ScheduleEntry, *model.ScheduleEntry]
	articles      *Collection[model.Article, *model.Article]
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)

	pingCtx := ctx
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return New(client, opts.Prefix, opts.Clock), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, clk clock.Clock) *Backend {
	if clk == nil {
		clk = clock.New()
	}
	return &Backend{
		client:        client,
		announcements: newCollection[model.Announcement](client, prefix, model.KindAnnouncement, clk),
		newsletters:   newCollection[model.Newsletter](client, prefix, model.KindNewsletter, clk),
		videos:        newCollection[model.Video](client, prefix, model.KindVideo, clk),
		schedule:      newCollection[model.ScheduleEntry](client, prefix, model.KindSchedule, clk),
		articles:      newCollection[model.Article](client, prefix, model.KindArticle, clk),
	}
}

// Announcements implements content.Backend.
func (b *Backend) Announcements() content.Store[model.Announcement] { return b.announcements }

// Newsletters implements content.Backend.
func (b *Backend) Newsletters() content.Store[model.Newsletter] { return b.newsletters }

// Videos implements content.Backend.
func (b *Backend) Videos() content.Store[model.Video] { return b.videos }

// Schedule implements content.Backend.
func (b *Backend) Schedule() content.Store[model.ScheduleEntry] { return b.schedule }

// Articles implements content.Backend.
func (b *Backend) Articles() content.Store[model.Article] { return b.articles }

// Ping checks the Redis connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (b *Backend) Close() error {
	return b.client.Close()
}

// Collection stores one kind in a single Redis hash.
type Collection[T any, PT model.Document[T]] struct {
	client *redis.Client
	key    string
	kind   model.Kind
	clock  clock.Clock
}

func newCollection[T any, PT model.Document[T]](client *redis.Client, prefix string, kind model.Kind, clk clock.Clock) *Collection[T, PT] {
	return &Collection[T, PT]{
		client: client,
		key:    prefix + "docs:" + string(kind),
		kind:   kind,
		clock:  clk,
	}
}

func (c *Collection[T, PT]) decode(raw string) (T, error) {
	var item T
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return item, fmt.Errorf("decoding %s: %w", c.kind, err)
	}
	return item, nil
}

func (c *Collection[T, PT]) put(ctx context.Context, item T) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.kind, err)
	}
	return c.client.HSet(ctx, c.key, PT(&item).GetMeta().ID, data).Err()
}

func (c *Collection[T, PT]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", c.kind, id, content.ErrNotFound)
}

// ListAll returns every document of the kind in no particular order.
func (c *Collection[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	raw, err := c.client.HVals(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.kind, err)
	}
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		item, err := c.decode(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetByID returns the document with id.
func (c *Collection[T, PT]) GetByID(ctx context.Context, id string) (T, error) {
	raw, err := c.client.HGet(ctx, c.key, id).Result()
	if errors.Is(err, redis.Nil) {
		var zero T
		return zero, c.notFound(id)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("getting %s %s: %w", c.kind, id, err)
	}
	return c.decode(raw)
}

// Create stores item under a new id and returns it.
func (c *Collection[T, PT]) Create(ctx context.Context, item T, actorID string) (string, error) {
	now := c.clock.Now().UTC()
	PT(&item).SetMeta(model.Meta{
		ID:        uuid.NewString(),
		Published: PT(&item).GetMeta().Published,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actorID,
	})
	if err := c.put(ctx, item); err != nil {
		return "", fmt.Errorf("creating %s: %w", c.kind, err)
	}
	return PT(&item).GetMeta().ID, nil
}

// Update replaces the document with id, keeping its creation metadata.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, item T) error {
	err := c.modify(ctx, id, func(existing T) T {
		prev := PT(&existing).GetMeta()
		PT(&item).SetMeta(model.Meta{
			ID:        id,
			Published: PT(&item).GetMeta().Published,
			CreatedAt: prev.CreatedAt,
			UpdatedAt: c.clock.Now().UTC(),
			CreatedBy: prev.CreatedBy,
		})
		return item
	})
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		return fmt.Errorf("updating %s %s: %w", c.kind, id, err)
	}
	return err
}

// Delete removes the document with id.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	n, err := c.client.HDel(ctx, c.key, id).Result()
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.kind, id, err)
	}
	if n == 0 {
		return c.notFound(id)
	}
	return nil
}

// SetPublished flips the published flag of the document with id.
func (c *Collection[T, PT]) SetPublished(ctx context.Context, id string, published bool) error {
	err := c.modify(ctx, id, func(item T) T {
		meta := PT(&item).GetMeta()
		meta.Published = published
		meta.UpdatedAt = c.clock.Now().UTC()
		PT(&item).SetMeta(meta)
		return item
	})
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		return fmt.Errorf("publishing %s %s: %w", c.kind, id, err)
	}
	return err
}

// maxModifyRetries bounds optimistic retries when the hash changes under a write.
const maxModifyRetries = 5

// modify rewrites an existing document inside WATCH/MULTI so that a
// concurrent delete or write aborts and retries instead of being overwritten.
func (c *Collection[T, PT]) modify(ctx context.Context, id string, change func(existing T) T) error {
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, c.key, id).Result()
		if errors.Is(err, redis.Nil) {
			return c.notFound(id)
		}
		if err != nil {
			return err
		}
		existing, err := c.decode(raw)
		if err != nil {
			return err
		}

		data, err := json.Marshal(change(existing))
		if err != nil {
			return fmt.Errorf("encoding %s: %w", c.kind, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, c.key, id, data)
			return nil
		})
		return err
	}

	for range maxModifyRetries {
		err := c.client.Watch(ctx, txf, c.key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%s %s changed concurrently %d times", c.kind, id, maxModifyRetries)
}
