package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names one cached summary.
type Kind string

const (
	KindOverview Kind = "overview"
	KindCategory Kind = "category"
)

// Kinds lists every kind InvalidateAll drops. Monthly trends are never cached.
var Kinds = []Kind{KindOverview, KindCategory}

const DefaultTTL = 15 * time.Minute

// Key is the storage key shared by every backend: analytics:{kind}:{userID}.
func Key(userID uuid.UUID, kind Kind) string {
	return fmt.Sprintf("analytics:%s:%s", kind, userID)
}

// SummaryCache stores serialized summaries per user and kind.
// Implementations never return errors: an unavailable backend reads as a miss
// and accepts writes without storing them.
//
//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=cache
type SummaryCache interface {
	Get(ctx context.Context, userID uuid.UUID, kind Kind) ([]byte, bool)
	Set(ctx context.Context, userID uuid.UUID, kind Kind, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, userID uuid.UUID, kind Kind)
	InvalidateAll(ctx context.Context, userID uuid.UUID)
}
