package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupQueue(t *testing.T) (*miniredis.Miniredis, *RedisQueue) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewRedisQueue(rdb, "test:jobs")
}

func TestPushPopFIFO(t *testing.T) {
	_, q := setupQueue(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Push(ctx, id); err != nil {
			t.Fatalf("push %s: %v", id, err)
		}
	}
	if n, err := q.Len(ctx); err != nil || n != 3 {
		t.Fatalf("len = %d, %v", n, err)
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Pop(ctx, time.Second)
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if got != want {
			t.Errorf("pop = %q, want %q", got, want)
		}
	}
}

func TestPopTimeoutReturnsEmpty(t *testing.T) {
	_, q := setupQueue(t)

	got, err := q.Pop(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if got != "" {
		t.Errorf("pop = %q, want empty", got)
	}
}

func TestPushUsesQueueKey(t *testing.T) {
	mr, q := setupQueue(t)

	if err := q.Push(context.Background(), "job-1"); err != nil {
		t.Fatalf("push: %v", err)
	}
	items, err := mr.List("test:jobs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0] != "job-1" {
		t.Errorf("list = %v", items)
	}
}

func TestPingFailsWhenServerDown(t *testing.T) {
	mr, q := setupQueue(t)
	if err := q.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := q.Ping(context.Background()); err == nil {
		t.Error("expected ping error after server shutdown")
	}
}
