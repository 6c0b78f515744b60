package authcore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/recipeshare/authcore/gateway"
	"github.com/recipeshare/authcore/kv"
	"github.com/recipeshare/authcore/session"
)

func newBenchmarkController(b *testing.B, store kv.Store) *Controller {
	b.Helper()

	stub := gateway.NewStub([]byte("bench-secret"))
	stub.Seed(session.Identity{
		ID:        "u1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}, "correct-password-123")

	cfg := defaultConfig()
	cfg.Reconcile.Interval = time.Minute

	c, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithGateway(stub).
		Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	b.Cleanup(c.Close)
	return c
}

func BenchmarkLoginLogoutMemory(b *testing.B) {
	c := newBenchmarkController(b, kv.NewMemory())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Login(context.Background(), "ada@example.com", "correct-password-123"); err != nil {
			b.Fatalf("login failed: %v", err)
		}
		if err := c.Logout(context.Background()); err != nil {
			b.Fatalf("logout failed: %v", err)
		}
	}
}

func BenchmarkLoginLogoutRedis(b *testing.B) {
	mr := miniredis.RunT(b)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = client.Close() })

	c := newBenchmarkController(b, kv.NewRedis(client, "bench"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Login(context.Background(), "ada@example.com", "correct-password-123"); err != nil {
			b.Fatalf("login failed: %v", err)
		}
		if err := c.Logout(context.Background()); err != nil {
			b.Fatalf("logout failed: %v", err)
		}
	}
}

func BenchmarkSnapshot(b *testing.B) {
	c := newBenchmarkController(b, kv.NewMemory())
	if err := c.Login(context.Background(), "ada@example.com", "correct-password-123"); err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap := c.Snapshot()
		if !snap.LoggedIn() {
			b.Fatal("expected logged-in snapshot")
		}
	}
}

func BenchmarkReconcileIdle(b *testing.B) {
	c := newBenchmarkController(b, kv.NewMemory())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Reconcile()
	}
}
