package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
)

func TestSeedAndHydrate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backend := session.NewRedisBackend(client, "lt", 0)
	if err := seed(context.Background(), backend, 200, 10); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, outcomes, engines := runHydratePhase(context.Background(), backend, 200, 400, 8)
	if stats.ops != 400 || stats.failures != 0 {
		t.Fatalf("unexpected hydrate stats %+v", stats)
	}
	if outcomes[goGuard.HydrateRestored] == 0 || outcomes[goGuard.HydratePurged] == 0 {
		t.Fatalf("expected restored and purged sessions, got %v", outcomes)
	}
	if len(engines) == 0 {
		t.Fatal("expected restored engines for the decide phase")
	}

	decide := runDecidePhase(engines, 1000, 4)
	if decide.ops != 1000 {
		t.Fatalf("expected 1000 decisions, got %d", decide.ops)
	}
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50: expected 5, got %d", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100: expected 10, got %d", got)
	}
	if got := percentile(nil, 99); got != 0 {
		t.Fatalf("empty: expected 0, got %d", got)
	}
}
