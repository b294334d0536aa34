package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/pocketbook/internal/cache"
)

func TestKey(t *testing.T) {
	userID := uuid.MustParse("6f1c3a52-8f0e-4c44-9a57-2d3b3f7e9a10")

	assert.Equal(t, "analytics:overview:6f1c3a52-8f0e-4c44-9a57-2d3b3f7e9a10", cache.Key(userID, cache.KindOverview))
	assert.Equal(t, "analytics:category:6f1c3a52-8f0e-4c44-9a57-2d3b3f7e9a10", cache.Key(userID, cache.KindCategory))
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestMemory_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := cache.NewMemory(cache.WithClock(clock.Now))
	ctx := context.Background()
	userID := uuid.New()

	c.Set(ctx, userID, cache.KindOverview, []byte(`{"income":"1"}`), cache.DefaultTTL)

	got, ok := c.Get(ctx, userID, cache.KindOverview)
	assert.True(t, ok)
	assert.JSONEq(t, `{"income":"1"}`, string(got))

	clock.now = clock.now.Add(cache.DefaultTTL - time.Second)
	_, ok = c.Get(ctx, userID, cache.KindOverview)
	assert.True(t, ok, "entry should live until the TTL elapses")

	clock.now = clock.now.Add(time.Second)
	_, ok = c.Get(ctx, userID, cache.KindOverview)
	assert.False(t, ok, "entry should be absent once the TTL elapses")
}

func TestMemory_Invalidate(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	for _, k := range cache.Kinds {
		c.Set(ctx, alice, k, []byte("a"), time.Minute)
		c.Set(ctx, bob, k, []byte("b"), time.Minute)
	}

	c.Invalidate(ctx, alice, cache.KindCategory)

	_, ok := c.Get(ctx, alice, cache.KindCategory)
	assert.False(t, ok)

	_, ok = c.Get(ctx, alice, cache.KindOverview)
	assert.True(t, ok)

	c.InvalidateAll(ctx, alice)

	for _, k := range cache.Kinds {
		_, ok := c.Get(ctx, alice, k)
		assert.False(t, ok, "alice %s should be gone", k)

		_, ok = c.Get(ctx, bob, k)
		assert.True(t, ok, "bob %s should be untouched", k)
	}
}

func TestMemory_SetCopiesValue(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()
	userID := uuid.New()

	value := []byte("abc")
	c.Set(ctx, userID, cache.KindOverview, value, time.Minute)
	value[0] = 'z'

	got, ok := c.Get(ctx, userID, cache.KindOverview)
	assert.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestNoop(t *testing.T) {
	var c cache.SummaryCache = cache.Noop{}
	ctx := context.Background()
	userID := uuid.New()

	c.Set(ctx, userID, cache.KindOverview, []byte("x"), time.Minute)

	_, ok := c.Get(ctx, userID, cache.KindOverview)
	assert.False(t, ok)
}

func TestRedis_NilClientDegrades(t *testing.T) {
	c := cache.NewRedis(nil, 0)
	ctx := context.Background()
	userID := uuid.New()

	assert.NotPanics(t, func() {
		c.Set(ctx, userID, cache.KindOverview, []byte("x"), time.Minute)
		c.Invalidate(ctx, userID, cache.KindOverview)
		c.InvalidateAll(ctx, userID)
	})

	_, ok := c.Get(ctx, userID, cache.KindOverview)
	assert.False(t, ok)
	assert.Error(t, c.Ping(ctx))
}

func TestRedis_UnreachableDegrades(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	c := cache.NewRedis(client, 100*time.Millisecond)
	ctx := context.Background()
	userID := uuid.New()

	start := time.Now()

	c.Set(ctx, userID, cache.KindOverview, []byte("x"), time.Minute)
	_, ok := c.Get(ctx, userID, cache.KindOverview)
	c.InvalidateAll(ctx, userID)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewClient_URLForms(t *testing.T) {
	bare := cache.NewClient("cache.internal:6380")
	defer bare.Close()

	assert.Equal(t, "cache.internal:6380", bare.Options().Addr)

	full := cache.NewClient("redis://:secret@cache.internal:6379/2")
	defer full.Close()

	assert.Equal(t, "cache.internal:6379", full.Options().Addr)
	assert.Equal(t, "secret", full.Options().Password)
	assert.Equal(t, 2, full.Options().DB)
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	mem, closeMem := cache.Open(ctx, "Memory", "", 0)
	defer closeMem()

	assert.IsType(t, &cache.Memory{}, mem)
	assert.NoError(t, mem.Ping(ctx))

	none, closeNone := cache.Open(ctx, "none", "", 0)
	defer closeNone()

	assert.IsType(t, cache.Noop{}, none)
}

func TestOpen_UnreachableRedisStillServes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	store, closeStore := cache.Open(ctx, "redis", "127.0.0.1:1", 50*time.Millisecond)
	defer closeStore()

	assert.IsType(t, &cache.Redis{}, store)
	assert.Error(t, store.Ping(ctx))

	_, ok := store.Get(ctx, uuid.New(), cache.KindOverview)
	assert.False(t, ok)
}
