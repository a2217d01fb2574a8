package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omart/marketplace/internal/logging"
)

const (
	DefaultTTL    = 5 * time.Minute
	ListingPrefix = "products_list:"
	scanBatch     = 100
)

type Options struct {
	URL      string
	Addr     string
	Password string
}

// Connect returns a live client, or nil when redis is unreachable so callers run without a cache.
func Connect(ctx context.Context, o Options, l *slog.Logger) *redis.Client {
	var opt *redis.Options
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			l.Warn("redis_disabled", "reason", "cannot parse REDIS_URL", "error", err)
			return nil
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: o.Addr, Password: o.Password}
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		l.Warn("redis_disabled", "reason", "ping failed", "addr", opt.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	l.Info("redis_connected", "addr", opt.Addr)
	return client
}

// Listings caches serialized public listing pages. A nil client turns every call into a miss.
type Listings struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewListings(client *redis.Client, ttl time.Duration) *Listings {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Listings{Client: client, TTL: ttl}
}

func (c *Listings) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}
	val, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("cache_get_error", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *Listings) Set(ctx context.Context, key string, value []byte) {
	if c == nil || c.Client == nil {
		return
	}
	if err := c.Client.Set(ctx, key, value, c.TTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_set_error", "key", key, "error", err)
	}
}

// Invalidate drops every cached listing page.
func (c *Listings) Invalidate(ctx context.Context) {
	if c == nil || c.Client == nil {
		return
	}
	if n, err := c.deleteMatching(ctx, ListingPrefix+"*"); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_error", "error", err)
	} else if n > 0 {
		logging.FromContext(ctx).Debug("cache_invalidated", "keys", n)
	}
}

func (c *Listings) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.Client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.Client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("del: %w", err)
			}
			deleted += len(keys)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
