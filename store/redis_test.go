package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	companionsdk "github.com/soulmesh-ai/companion-sdk-go"
)

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisActivityStore_AppendAndList(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisActivityStore(client)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	events := []*companionsdk.ActivityEvent{
		{UserID: "u1", Type: companionsdk.EventCrisis, Timestamp: base, Metadata: map[string]any{"severity": 8}},
		{UserID: "u1", Type: companionsdk.EventTrustGained, Timestamp: base.Add(time.Second)},
		{UserID: "u2", Type: companionsdk.EventMilestoneAchieved, Timestamp: base.Add(2 * time.Second)},
	}
	for _, e := range events {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
		if e.ID == "" {
			t.Fatal("append must assign an event ID")
		}
	}

	byUser, err := store.ListByUser(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected 2 events for u1, got %d", len(byUser))
	}
	if byUser[0].Type != companionsdk.EventCrisis {
		t.Fatalf("expected oldest first, got %s", byUser[0].Type)
	}
	if sev, ok := byUser[0].Metadata["severity"].(float64); !ok || sev != 8 {
		t.Fatalf("metadata did not survive the roundtrip: %+v", byUser[0].Metadata)
	}

	all, err := store.ListSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events total, got %d", len(all))
	}
}

func TestRedisActivityStore_SinceFilter(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisActivityStore(client)
	ctx := context.Background()

	old := &companionsdk.ActivityEvent{
		UserID:    "u1",
		Type:      companionsdk.EventCrisis,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}
	if err := store.Append(ctx, old); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, &companionsdk.ActivityEvent{UserID: "u1", Type: companionsdk.EventCrisis}); err != nil {
		t.Fatalf("append: %v", err)
	}

	recent, err := store.ListSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected only the recent event, got %d", len(recent))
	}
}

func TestRedisTrustStore_UpdateTrust(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisTrustStore(client)
	ctx := context.Background()

	trust, err := store.Trust(ctx, "u1")
	if err != nil {
		t.Fatalf("trust: %v", err)
	}
	if trust != 0 {
		t.Fatalf("fresh user should start at 0, got %f", trust)
	}

	old, updated, err := store.UpdateTrust(ctx, "u1", func(current float64) float64 {
		return current + 1.5
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if old != 0 || updated != 1.5 {
		t.Fatalf("expected 0 -> 1.5, got %f -> %f", old, updated)
	}

	old, updated, err = store.UpdateTrust(ctx, "u1", func(current float64) float64 {
		return current + 0.5
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if old != 1.5 || updated != 2 {
		t.Fatalf("expected 1.5 -> 2, got %f -> %f", old, updated)
	}

	trust, err = store.Trust(ctx, "u1")
	if err != nil {
		t.Fatalf("trust: %v", err)
	}
	if trust != 2 {
		t.Fatalf("expected persisted trust 2, got %f", trust)
	}
}

func TestRedisTrustStore_MarkAchievedIdempotent(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisTrustStore(client)
	ctx := context.Background()

	newly, err := store.MarkAchieved(ctx, "u1", "warming_up", time.Now())
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !newly {
		t.Fatal("first mark should report newly achieved")
	}

	newly, err = store.MarkAchieved(ctx, "u1", "warming_up", time.Now())
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if newly {
		t.Fatal("second mark must not report newly achieved")
	}

	achieved, err := store.Achieved(ctx, "u1")
	if err != nil {
		t.Fatalf("achieved: %v", err)
	}
	if _, ok := achieved["warming_up"]; !ok || len(achieved) != 1 {
		t.Fatalf("unexpected achieved set: %v", achieved)
	}
}

func TestRedisTrustStore_ExternalEvents(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisTrustStore(client)
	ctx := context.Background()

	if err := store.RecordExternalEvent(ctx, "u1", "vulnerability_shared", time.Now().Add(-8*24*time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}

	has, err := store.HasExternalEventSince(ctx, "u1", "vulnerability_shared", time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if has {
		t.Fatal("event outside the window must not match")
	}

	if err := store.RecordExternalEvent(ctx, "u1", "vulnerability_shared", time.Now()); err != nil {
		t.Fatalf("record: %v", err)
	}
	has, err = store.HasExternalEventSince(ctx, "u1", "vulnerability_shared", time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !has {
		t.Fatal("recent event should match")
	}
}

func TestRedisTrustStore_MessageCount(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisTrustStore(client)
	ctx := context.Background()

	count, err := store.MessageCount(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("fresh user should have 0 messages, got %d", count)
	}

	for i := 1; i <= 3; i++ {
		count, err = store.IncrMessageCount(ctx, "u1")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
	}
}
