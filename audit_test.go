package goGuard

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/session"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

type recordingGateSink struct {
	gate   chan struct{}
	mu     sync.Mutex
	events []AuditEvent
}

func (s *recordingGateSink) Emit(_ context.Context, event AuditEvent) {
	<-s.gate
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *recordingGateSink) recorded() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEvent(nil), s.events...)
}

func buildAuditTestEngine(t *testing.T, sink AuditSink, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := GroceryConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	engine, err := New().
		WithConfig(cfg).
		WithBackend(session.NewMemoryBackend()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

func nextEvent(t *testing.T, ch <-chan AuditEvent) AuditEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestAuditLifecycleEvents(t *testing.T) {
	sink := NewChannelSink(16)
	e := buildAuditTestEngine(t, sink, nil)
	defer e.Close()

	ctx := WithRequestID(WithSource(context.Background(), "cli"), "req-1")
	e.Hydrate(ctx)
	if err := e.Login(ctx, seller()); err != nil {
		t.Fatalf("login: %v", err)
	}
	e.Invalidate(ctx, "backend_401")
	if err := e.Login(ctx, seller()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := e.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	want := []string{
		auditEventLoginSuccess,
		auditEventSessionInvalidated,
		auditEventLoginSuccess,
		auditEventLogout,
	}
	for i, typ := range want {
		ev := nextEvent(t, sink.Events())
		if ev.EventType != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, ev.EventType)
		}
		if ev.UserID != "u-1" || ev.Role != "SELLER" {
			t.Fatalf("event %d: unexpected subject %q/%q", i, ev.UserID, ev.Role)
		}
		if ev.Source != "cli" || ev.RequestID != "req-1" {
			t.Fatalf("event %d: context fields not propagated: %+v", i, ev)
		}
	}
}

func TestAuditHydratePurgedCarriesReason(t *testing.T) {
	sink := NewChannelSink(4)
	mem := session.NewMemoryBackend()
	_ = mem.Set(context.Background(), "grocery.user", "{broken")
	_ = mem.Set(context.Background(), "grocery.token", "abc")

	e, err := New().WithConfig(GroceryConfig()).WithBackend(mem).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer e.Close()

	e.Hydrate(context.Background())
	ev := nextEvent(t, sink.Events())
	if ev.EventType != auditEventHydratePurged || ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Error != string(auditErrSnapshotCorrupt) || ev.Metadata["reason"] != string(auditErrSnapshotCorrupt) {
		t.Fatalf("expected corrupt snapshot code, got %+v", ev)
	}
}

func TestAuditLoginFailureHasNoToken(t *testing.T) {
	var buf bytes.Buffer
	e := buildAuditTestEngine(t, NewJSONWriterSink(&buf), nil)

	e.Hydrate(context.Background())
	_, _ = e.LoginResponse(context.Background(), []byte(`{"token":"null","password":"hunter2"}`))
	e.Close()

	line := strings.TrimSpace(buf.String())
	var ev AuditEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	if ev.EventType != auditEventLoginFailure || ev.Error != string(auditErrNoIdentity) {
		t.Fatalf("unexpected event %+v", ev)
	}
	if strings.Contains(line, "hunter2") {
		t.Fatal("raw response data leaked into audit log")
	}
}

func TestAuditDropIfFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	e := buildAuditTestEngine(t, sink, func(c *Config) {
		c.Audit.BufferSize = 1
		c.Audit.DropIfFull = true
	})

	e.Hydrate(context.Background())
	for i := 0; i < 10; i++ {
		_ = e.Login(context.Background(), seller())
	}

	if e.AuditDropped() == 0 {
		t.Fatal("expected dropped events with a blocked sink")
	}
	close(sink.gate)
	e.Close()
}

func TestAuditSessionEndingEventsAreNotDropped(t *testing.T) {
	sink := &recordingGateSink{gate: make(chan struct{})}
	e := buildAuditTestEngine(t, sink, func(c *Config) {
		c.Audit.BufferSize = 1
		c.Audit.DropIfFull = true
	})
	ctx := context.Background()

	e.Hydrate(ctx)
	for i := 0; i < 5; i++ {
		_ = e.Login(ctx, seller())
	}
	if e.AuditDropped() == 0 {
		t.Fatal("expected login events dropped with a blocked sink")
	}

	logoutDone := make(chan error, 1)
	go func() { logoutDone <- e.Logout(ctx) }()
	close(sink.gate)
	if err := <-logoutDone; err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := e.FlushAudit(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	events := sink.recorded()
	last := events[len(events)-1]
	if last.EventType != auditEventLogout {
		t.Fatalf("expected logout delivered last, got %q", last.EventType)
	}
	if last.Seq != 6 {
		t.Fatalf("expected logout seq 6, got %d", last.Seq)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("sequence not increasing: %d then %d", events[i-1].Seq, events[i].Seq)
		}
	}
	e.Close()
}

func TestAuditFlushWaitsForQueuedEvents(t *testing.T) {
	sink := &countingSink{}
	e := buildAuditTestEngine(t, sink, func(c *Config) {
		c.Audit.BufferSize = 64
	})
	t.Cleanup(e.Close)
	ctx := context.Background()

	e.Hydrate(ctx)
	for i := 0; i < 20; i++ {
		_ = e.Login(ctx, seller())
	}
	if err := e.FlushAudit(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := sink.count.Load(); got != 20 {
		t.Fatalf("expected 20 delivered before flush returned, got %d", got)
	}
}

func TestAuditFlushHonoursContext(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	e := buildAuditTestEngine(t, sink, func(c *Config) {
		c.Audit.BufferSize = 4
	})
	e.Hydrate(context.Background())
	_ = e.Login(context.Background(), seller())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := e.FlushAudit(ctx); err == nil {
		t.Fatal("expected flush to give up while the sink is blocked")
	}
	close(sink.gate)
	e.Close()
}

func TestAuditDisabledByDefault(t *testing.T) {
	e, err := New().WithConfig(GroceryConfig()).WithBackend(session.NewMemoryBackend()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if e.audit != nil {
		t.Fatal("expected no dispatcher without a sink")
	}
	e.Close()
}

func TestAuditCloseDrains(t *testing.T) {
	sink := &countingSink{}
	e := buildAuditTestEngine(t, sink, func(c *Config) {
		c.Audit.DropIfFull = false
		c.Audit.BufferSize = 64
	})

	e.Hydrate(context.Background())
	for i := 0; i < 20; i++ {
		_ = e.Login(context.Background(), seller())
	}
	e.Close()

	if got := sink.count.Load(); got != 20 {
		t.Fatalf("expected 20 delivered events, got %d", got)
	}
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewSlogSink(logger)

	sink.Emit(context.Background(), AuditEvent{
		EventType: auditEventHydratePurged,
		Success:   false,
		Error:     string(auditErrTokenPlaceholder),
		Metadata:  map[string]string{"reason": "token_placeholder"},
	})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["level"] != "WARN" || rec["event"] != auditEventHydratePurged || rec["reason"] != "token_placeholder" {
		t.Fatalf("unexpected record %v", rec)
	}
}
