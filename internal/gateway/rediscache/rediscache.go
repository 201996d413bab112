// Package rediscache decorates a persistence gateway with per-user Redis
// caching of the fetch-all call. Submits pass through and invalidate the
// affected user's cache entry.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"roomdesk/internal/gateway"
	"roomdesk/internal/model"
)

// Gateway wraps an inner gateway with Redis caching.
type Gateway struct {
	inner  gateway.Gateway
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a caching gateway. The cache is best-effort: Redis failures
// are logged and the call falls through to the inner gateway.
func New(inner gateway.Gateway, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Gateway {
	return &Gateway{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "rediscache").Logger(),
	}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("bookings:%s", userID)
}

func (g *Gateway) SubmitCreate(ctx context.Context, sub model.BookingSubmission) (*model.Booking, error) {
	b, err := g.inner.SubmitCreate(ctx, sub)
	if err != nil {
		return nil, err
	}
	g.invalidate(ctx, sub.UserID)
	return b, nil
}

func (g *Gateway) SubmitUpdate(ctx context.Context, id string, fields model.BookingFields) error {
	if err := g.inner.SubmitUpdate(ctx, id, fields); err != nil {
		return err
	}
	g.invalidateAll(ctx)
	return nil
}

func (g *Gateway) SubmitDelete(ctx context.Context, id string) error {
	if err := g.inner.SubmitDelete(ctx, id); err != nil {
		return err
	}
	g.invalidateAll(ctx)
	return nil
}

func (g *Gateway) FetchAllForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	key := cacheKey(userID)

	if data, err := g.client.Get(ctx, key).Bytes(); err == nil {
		var cached []model.Booking
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry, drop it and refetch.
		g.client.Del(ctx, key)
	}

	bookings, err := g.inner.FetchAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(bookings); err == nil {
		if err := g.client.Set(ctx, key, data, g.ttl).Err(); err != nil {
			g.logger.Warn().Err(err).Str("user_id", userID).Msg("cache write failed")
		}
	}
	return bookings, nil
}

func (g *Gateway) invalidate(ctx context.Context, userID string) {
	if err := g.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		g.logger.Warn().Err(err).Str("user_id", userID).Msg("cache invalidation failed")
	}
}

// invalidateAll drops every user's cached bookings. Update and delete only
// carry a booking id, so the owning user is not known here.
func (g *Gateway) invalidateAll(ctx context.Context) {
	iter := g.client.Scan(ctx, 0, "bookings:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := g.client.Del(ctx, iter.Val()).Err(); err != nil {
			g.logger.Warn().Err(err).Str("key", iter.Val()).Msg("cache invalidation failed")
		}
	}
	if err := iter.Err(); err != nil {
		g.logger.Warn().Err(err).Msg("cache scan failed")
	}
}
