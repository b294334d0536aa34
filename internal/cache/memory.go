package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process SummaryCache. Expired entries are dropped on read.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

type MemoryOption func(*Memory)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) Get(_ context.Context, userID uuid.UUID, kind Kind) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(userID, kind)

	e, ok := m.items[key]
	if !ok {
		return nil, false
	}

	if !m.now().Before(e.expiresAt) {
		delete(m.items, key)
		return nil, false
	}

	return e.value, true
}

func (m *Memory) Set(_ context.Context, userID uuid.UUID, kind Kind, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[Key(userID, kind)] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
}

func (m *Memory) Invalidate(_ context.Context, userID uuid.UUID, kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, Key(userID, kind))
}

func (m *Memory) InvalidateAll(_ context.Context, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range Kinds {
		delete(m.items, Key(userID, k))
	}
}

func (m *Memory) Ping(context.Context) error { return nil }
