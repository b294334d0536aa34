package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Noop disables caching: every read misses.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID, Kind) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, uuid.UUID, Kind, []byte, time.Duration) {}
func (Noop) Invalidate(context.Context, uuid.UUID, Kind) {}
func (Noop) InvalidateAll(context.Context, uuid.UUID) {}
func (Noop) Ping(context.Context) error { return nil }
