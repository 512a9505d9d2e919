package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/guard"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of persisted sessions to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (hydrate + decide)")
		corrupt     = flag.Int("corrupt", 5, "percentage of seeded sessions written malformed")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt", "redis key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 || *corrupt < 0 || *corrupt > 100 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency and ops must be > 0; corrupt must be 0-100")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	backend := session.NewRedisBackend(client, *prefix, 0)

	fmt.Printf("seeding %d sessions (%d%% malformed)...\n", *sessions, *corrupt)
	startSeed := time.Now()
	if err := seed(ctx, backend, *sessions, *corrupt); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	hydrate, outcomes, engines := runHydratePhase(ctx, backend, *sessions, *ops, *concurrency)
	decide := runDecidePhase(engines, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("hydrate", hydrate)
	fmt.Printf("hydrate outcomes: restored=%d purged=%d empty=%d\n",
		outcomes[goGuard.HydrateRestored], outcomes[goGuard.HydratePurged], outcomes[goGuard.HydrateEmpty])
	printStats("decide", decide)
}

func keyPrefix(i int) string {
	return fmt.Sprintf("u%d.", i)
}

func engineConfig(i int) goGuard.Config {
	cfg := goGuard.GroceryConfig()
	cfg.Session.KeyPrefix = keyPrefix(i)
	return cfg
}

var roles = []permission.Role{"ADMIN", "SELLER", "CUSTOMER", "DELIVERY_PARTNER"}

var permsByRole = map[permission.Role][]string{
	"ADMIN":            {"USER_MANAGE", "PRODUCT_VIEW", "PRODUCT_CREATE", "PRODUCT_UPDATE", "PRODUCT_DELETE", "ORDER_VIEW", "ORDER_UPDATE"},
	"SELLER":           {"PRODUCT_VIEW", "PRODUCT_CREATE", "PRODUCT_UPDATE", "ORDER_VIEW"},
	"CUSTOMER":         {"PRODUCT_VIEW", "ORDER_VIEW", "ORDER_CREATE"},
	"DELIVERY_PARTNER": {"DELIVERY_VIEW", "DELIVERY_UPDATE"},
}

func seed(ctx context.Context, backend session.Backend, n, corruptPct int) error {
	for i := 0; i < n; i++ {
		store := session.NewStore(backend, keyPrefix(i))
		if i%100 < corruptPct {
			userKey, tokenKey := store.Keys()
			if err := backend.Set(ctx, userKey, `{"role":`); err != nil {
				return err
			}
			if err := backend.Set(ctx, tokenKey, "undefined"); err != nil {
				return err
			}
			continue
		}
		role := roles[i%len(roles)]
		id := session.Identity{
			ID:          fmt.Sprintf("user-%d", i),
			DisplayName: fmt.Sprintf("User %d", i),
			Role:        role,
			Permissions: permission.NewSet(permsByRole[role]...),
			Token:       fmt.Sprintf("tok-%d", i),
		}
		if err := store.Save(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func runHydratePhase(ctx context.Context, backend session.Backend, sessions, ops, concurrency int) (phaseStats, map[goGuard.HydrateOutcome]int64, []*goGuard.Engine) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		outcomes  = map[goGuard.HydrateOutcome]int64{}
		keep      []*goGuard.Engine
		mu        sync.Mutex
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	const keepMax = 1024

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(sessions)
				engine, err := goGuard.New().
					WithConfig(engineConfig(idx)).
					WithBackend(backend).
					WithLogger(logger).
					Build()
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				t0 := time.Now()
				res := engine.Hydrate(ctx)
				d := time.Since(t0)

				mu.Lock()
				latencies = append(latencies, d)
				outcomes[res.Outcome]++
				if res.Outcome == goGuard.HydrateRestored && len(keep) < keepMax {
					keep = append(keep, engine)
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures), outcomes, keep
}

var requirements = []guard.Requirement{
	{},
	guard.Permission("PRODUCT_VIEW"),
	guard.AnyOf("ORDER_UPDATE", "DELIVERY_UPDATE"),
	guard.AllOf("PRODUCT_CREATE", "PRODUCT_UPDATE", "PRODUCT_DELETE"),
	guard.Roles("ADMIN"),
	{Role: "SELLER", Permission: "ORDER_VIEW"},
}

func runDecidePhase(engines []*goGuard.Engine, ops, concurrency int) phaseStats {
	if len(engines) == 0 {
		return phaseStats{}
	}
	var (
		wg        sync.WaitGroup
		cursor    int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			local := make([]time.Duration, 0, 256)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					break
				}
				engine := engines[r.Intn(len(engines))]
				req := requirements[r.Intn(len(requirements))]
				t0 := time.Now()
				_ = guard.Decide(engine, req)
				local = append(local, time.Since(t0))
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, 0)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
