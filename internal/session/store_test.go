package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tanicerdas/seedbot-console/model"
)

func sampleRecord() Record {
	return Record{
		Token: "backend-token",
		User:  model.User{ID: "u1", Username: "tono", FullName: "Tono Sugiarto", Role: model.RoleFarmer},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "s1", sampleRecord(), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, found, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("record not found")
	}
	if rec.Token != "backend-token" || rec.User.Username != "tono" {
		t.Errorf("got %+v, want the stored record", rec)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "s1", sampleRecord(), -time.Second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, found, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("expired record still returned")
	}
	if store.Len() != 0 {
		t.Error("expired record not evicted on read")
	}
}

func TestMemoryStoreDeleteAbsent(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("Delete of absent record: %v", err)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Put(ctx, "s1", sampleRecord(), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, found, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("record not found")
	}
	if rec.User.Role != model.RoleFarmer {
		t.Errorf("role = %q, want farmer", rec.User.Role)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "s1"); found {
		t.Error("record survived delete")
	}
}

func TestRedisStoreTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Put(ctx, "s1", sampleRecord(), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("record survived its TTL")
	}
}
