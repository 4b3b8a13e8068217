package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheTimeout = 5 * time.Second

// ConnectCache opens the Redis client backing CachedLookup and pings it.
func ConnectCache(ctx context.Context, conf CacheConfiguration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: conf.Addr,
		DB:   conf.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

//CachedLookup - read-through Redis cache in front of a NameLookup
type CachedLookup struct {
	Log    *logrus.Logger
	client *redis.Client
	inner  NameLookup
	ttl    time.Duration
}

func NewCachedLookup(log *logrus.Logger, client *redis.Client, inner NameLookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{Log: log, client: client, inner: inner, ttl: ttl}
}

// Lookup serves a cached position when present. Cache failures never fail the
// lookup; unknown names are not cached.
func (c *CachedLookup) Lookup(ctx context.Context, name string) (SkyPosition, error) {
	key := cacheKey(name)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		pos, errParse := parseCached(val)
		if errParse == nil {
			return pos, nil
		}
		c.Log.WithContext(ctx).WithFields(logrus.Fields{
			"key":   key,
			"Error": errParse,
		}).Warn("Discarding malformed cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.Log.WithContext(ctx).WithFields(logrus.Fields{
			"key":   key,
			"Error": err,
		}).Warn("Cache read failed")
	}

	pos, err := c.inner.Lookup(ctx, name)
	if err != nil {
		return pos, err
	}

	if errSet := c.client.Set(ctx, key, fmt.Sprintf("%.10f %.10f", pos.RA, pos.Dec), c.ttl).Err(); errSet != nil {
		c.Log.WithContext(ctx).WithFields(logrus.Fields{
			"key":   key,
			"Error": errSet,
		}).Warn("Cache write failed")
	}
	return pos, nil
}

func cacheKey(name string) string {
	return "astrotracker:sesame:" + strings.ToLower(strings.TrimSpace(name))
}

func parseCached(val string) (SkyPosition, error) {
	var pos SkyPosition
	if _, err := fmt.Sscanf(val, "%f %f", &pos.RA, &pos.Dec); err != nil {
		return pos, err
	}
	return pos, nil
}
