package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisSessionStore_SaveLoad(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisSessionStore(client, "test-save-load")
	defer client.Del(ctx, "session:test-save-load")

	want := domain.Session{Token: "tok", Email: "admin@example.com", IsAdmin: true}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestRedisSessionStore_LoadMissing(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, "session:test-missing")
	store := NewRedisSessionStore(client, "test-missing")

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Active() {
		t.Errorf("expected inactive session, got %+v", got)
	}
}

func TestRedisSessionStore_Clear(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisSessionStore(client, "test-clear")

	if err := store.Save(ctx, domain.Session{Token: "tok", Email: "a@example.com"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	n, _ := client.Exists(ctx, "session:test-clear").Result()
	if n != 0 {
		t.Errorf("expected key removed, exists=%d", n)
	}
}

func TestRedisSessionStore_ProfilesIsolated(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	a := NewRedisSessionStore(client, "test-profile-a")
	b := NewRedisSessionStore(client, "test-profile-b")
	defer client.Del(ctx, "session:test-profile-a", "session:test-profile-b")

	a.Save(ctx, domain.Session{Token: "a", Email: "a@example.com"})
	b.Clear(ctx)

	got, _ := b.Load(ctx)
	if got.Active() {
		t.Errorf("expected profile b empty, got %+v", got)
	}
	got, _ = a.Load(ctx)
	if got.Token != "a" {
		t.Errorf("expected profile a token, got %+v", got)
	}
}
