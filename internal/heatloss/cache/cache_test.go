package cache

import (
	"context"
	"testing"
	"time"

	"heatsurvey_backend/internal/heatloss/transport"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	org, survey := uuid.New(), uuid.New()

	want := transport.EvaluationResponse{
		ResultConfidence: 72,
		ValidationState:  "PROVISIONAL",
		Rooms: []transport.RoomEvaluationResponse{
			{RoomID: "r1", Confidence: 72, Adequacy: map[string]string{"45": "upsize"}},
		},
	}
	if err := c.Set(ctx, org, survey, want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, org, survey)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ResultConfidence != 72 || got.Rooms[0].Adequacy["45"] != "upsize" {
		t.Fatalf("unexpected cached value %+v", got)
	}

	if _, ok, _ := c.Get(ctx, uuid.New(), survey); ok {
		t.Fatal("a different organization must not see the entry")
	}
}

func TestCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	org, survey := uuid.New(), uuid.New()

	if err := c.Set(ctx, org, survey, transport.EvaluationResponse{ResultConfidence: 10}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL(Key(org, survey)); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, err := c.Get(ctx, org, survey); ok || err != nil {
		t.Fatalf("expected miss after ttl, got ok=%v err=%v", ok, err)
	}
}

func TestCacheInvalidateAndCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	org, survey := uuid.New(), uuid.New()

	if err := c.Set(ctx, org, survey, transport.EvaluationResponse{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Invalidate(ctx, org, survey); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(Key(org, survey)) {
		t.Fatal("expected key removed")
	}

	if err := mr.Set(Key(org, survey), "{not json"); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}
	if _, ok, err := c.Get(ctx, org, survey); ok || err != nil {
		t.Fatalf("corrupt entry should be a miss, got ok=%v err=%v", ok, err)
	}
	if mr.Exists(Key(org, survey)) {
		t.Fatal("corrupt entry should be dropped")
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	c, _ := newTestCache(t, 0)
	if c.ttl != defaultTTL {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
}

func TestCachePing(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed, got %v", err)
	}

	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail once redis is gone")
	}
}
