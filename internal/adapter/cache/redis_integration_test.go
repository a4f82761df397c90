//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := tcredis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get redis port: %v", err)
	}

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisCache_Operations(t *testing.T) {
	ctx := context.Background()
	url := startRedis(t, ctx)

	c, err := NewRedisCache(url, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "rag:test", "context blob", time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
		val, err := c.Get(ctx, "rag:test")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if val != "context blob" {
			t.Errorf("Expected 'context blob', got %q", val)
		}
	})

	t.Run("Expiration", func(t *testing.T) {
		if err := c.Set(ctx, "media:expiring", "audio", 100*time.Millisecond); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(150 * time.Millisecond)
		if _, err := c.Get(ctx, "media:expiring"); err == nil {
			t.Error("Key should have expired")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "rag:delete", "value", time.Minute)
		if err := c.Delete(ctx, "rag:delete"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := c.Get(ctx, "rag:delete"); err == nil {
			t.Error("Key should have been deleted")
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		if _, err := c.Get(ctx, "rag:nonexistent"); err == nil {
			t.Error("Expected an error for a missing key")
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := c.Ping(); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
