package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

const keyPrefix = "playlist:"

func InitRedis(reddisAddress string, redisUsername string, redisPassword string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     reddisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// PlaylistResolver is what the playlist endpoint calls.
type PlaylistResolver interface {
	ResolvePlaylist(ctx context.Context, displayID *uuid.UUID) (model.Playlist, error)
}

// PlaylistCache keeps resolved playlists for a short TTL and drops a
// display's entries whenever one of its bookings changes.
type PlaylistCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ schedule.Announcer = (*PlaylistCache)(nil)

func NewPlaylistCache(rdb *redis.Client, ttl time.Duration) *PlaylistCache {
	return &PlaylistCache{rdb: rdb, ttl: ttl}
}

// Key returns the cache key for a playlist request; nil means the main display.
func Key(displayID *uuid.UUID) string {
	if displayID == nil {
		return keyPrefix + "main"
	}
	return keyPrefix + displayID.String()
}

func (c *PlaylistCache) Get(ctx context.Context, displayID *uuid.UUID) (model.Playlist, bool) {
	raw, err := c.rdb.Get(ctx, Key(displayID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", Key(displayID)).Msg("playlist cache read failed")
		}
		return model.Playlist{}, false
	}
	var p model.Playlist
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Playlist{}, false
	}
	return p, true
}

func (c *PlaylistCache) Set(ctx context.Context, displayID *uuid.UUID, p model.Playlist) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, Key(displayID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", Key(displayID)).Msg("Failed to add playlist to redis")
	}
}

// Announce invalidates the display's entry and the main-display entry, since
// the display may be the main one.
func (c *PlaylistCache) Announce(ctx context.Context, ev schedule.BookingEvent) error {
	id := ev.Booking.DisplayID
	return c.rdb.Del(ctx, Key(&id), Key(nil)).Err()
}

// MainDisplayChanged drops the main-display entry so players following the
// main display pick up the new one on their next poll.
func (c *PlaylistCache) MainDisplayChanged(ctx context.Context) error {
	return c.rdb.Del(ctx, Key(nil)).Err()
}

// Wrap returns a resolver that serves from the cache and fills it on a miss.
// Errors are never cached.
func (c *PlaylistCache) Wrap(next PlaylistResolver) PlaylistResolver {
	return &cachedResolver{cache: c, next: next}
}

type cachedResolver struct {
	cache *PlaylistCache
	next  PlaylistResolver
}

func (r *cachedResolver) ResolvePlaylist(ctx context.Context, displayID *uuid.UUID) (model.Playlist, error) {
	if p, ok := r.cache.Get(ctx, displayID); ok {
		return p, nil
	}
	p, err := r.next.ResolvePlaylist(ctx, displayID)
	if err != nil {
		return model.Playlist{}, err
	}
	r.cache.Set(ctx, displayID, p)
	return p, nil
}
