package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Store is a SummaryCache that can report its own health.
type Store interface {
	SummaryCache
	Ping(ctx context.Context) error
}

// Open selects a cache by driver name: memory, none, or anything else for
// redis. It never fails; an unreachable Redis still yields a client that
// reconnects on its own, and until then reads fall through to the ledger.
func Open(ctx context.Context, driver, redisURL string, opTimeout time.Duration) (Store, func()) {
	switch strings.ToLower(driver) {
	case "memory":
		return NewMemory(), func() {}
	case "none":
		return Noop{}, func() {}
	}

	client, err := Connect(ctx, redisURL)
	if err != nil {
		slog.WarnContext(ctx, "redis unavailable, analytics will read from the ledger until it recovers", "error", err)
		client = NewClient(redisURL)
	}

	return NewRedis(client, opTimeout), func() {
		if err := client.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	}
}
