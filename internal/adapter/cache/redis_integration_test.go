//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) *RedisCache {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis connection string: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	c, err := NewRedisCache(url, logger)
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_SetNXClaims(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "notification:claim:push_notifications/n1", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected claim, got %v %v", ok, err)
	}

	ok, err = c.SetNX(ctx, "notification:claim:push_notifications/n1", "1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second claim to fail")
	}

	if err := c.Delete(ctx, "notification:claim:push_notifications/n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "notification:claim:push_notifications/n1"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after delete, got %v", err)
	}
}

func TestRedisCache_Ping(t *testing.T) {
	c := setupRedis(t)

	if err := c.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
