//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestRedisCache runs against a live Redis. Set BENTOGRID_REDIS_ADDR to
// enable it, e.g. localhost:6379.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("BENTOGRID_REDIS_ADDR")
	if addr == "" {
		t.Skip("BENTOGRID_REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := "bentogrid-test:" + time.Now().Format("150405.000") + ":"
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: prefix})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "short", []byte("x"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("entry should have expired")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted entry should be a miss")
	}
}
