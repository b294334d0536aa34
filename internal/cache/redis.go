package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultOpTimeout = 250 * time.Millisecond

// NewClient builds a client for url without dialing. url may be a full
// redis:// URL or a bare host:port.
func NewClient(url string) *redis.Client {
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: strings.TrimPrefix(url, "redis://")}
	}

	return redis.NewClient(opt)
}

// Connect is NewClient followed by a ping.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	client := NewClient(url)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return client, nil
}

// Redis is a SummaryCache over go-redis. A nil client is treated as a backend
// that is permanently down.
type Redis struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewRedis(client *redis.Client, opTimeout time.Duration) *Redis {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	return &Redis{client: client, opTimeout: opTimeout}
}

func (r *Redis) Get(ctx context.Context, userID uuid.UUID, kind Kind) ([]byte, bool) {
	if r.client == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	key := Key(userID, kind)

	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
		}

		return nil, false
	}

	return b, true
}

func (r *Redis) Set(ctx context.Context, userID uuid.UUID, kind Kind, value []byte, ttl time.Duration) {
	if r.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	key := Key(userID, kind)
	if err := r.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, userID uuid.UUID, kind Kind) {
	r.del(ctx, Key(userID, kind))
}

func (r *Redis) InvalidateAll(ctx context.Context, userID uuid.UUID) {
	keys := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		keys = append(keys, Key(userID, k))
	}

	r.del(ctx, keys...)
}

func (r *Redis) del(ctx context.Context, keys ...string) {
	if r.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "Cache invalidation failed", "keys", keys, "error", err)
	}
}

// Ping reports backend reachability for health checks.
func (r *Redis) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	return r.client.Ping(ctx).Err()
}
