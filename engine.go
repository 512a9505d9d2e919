package goGuard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/goGuard/normalize"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// Engine owns one user's client-side session: the in-memory identity, its persisted
// record and the permission predicates evaluated against it.
//
// An Engine starts in the loading state and reports no identity until Hydrate has
// run. All methods are safe for concurrent use. Mutating operations are serialized so
// the in-memory identity and the persisted record never diverge; predicates only take
// a read lock and never wait on storage I/O.
type Engine struct {
	config     Config
	catalog    *permission.Catalog
	store      *session.Store
	normalizer *normalize.Normalizer
	audit      *auditDispatcher
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time

	// opMu serializes operations that touch storage.
	opMu sync.Mutex

	mu       sync.RWMutex
	identity *Identity
	loading  bool
}

// Close stops the audit dispatcher after draining queued events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// FlushAudit waits until every audit event recorded so far has reached the sink. It
// returns ctx.Err() when ctx ends first and nil when auditing is off.
func (e *Engine) FlushAudit(ctx context.Context) error {
	if e == nil || e.audit == nil {
		return nil
	}
	return e.audit.Flush(ctx)
}

// AuditDropped returns the number of audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Catalog returns the frozen role and permission catalog.
func (e *Engine) Catalog() *permission.Catalog {
	if e == nil {
		return nil
	}
	return e.catalog
}

// Config returns a copy of the configuration the Engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// Loading reports whether the first Hydrate has not completed yet.
func (e *Engine) Loading() bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// IsAuthenticated reports whether an identity is present.
func (e *Engine) IsAuthenticated() bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.identity != nil
}

// Identity returns a copy of the current identity.
func (e *Engine) Identity() (Identity, bool) {
	if e == nil {
		return Identity{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.identity == nil {
		return Identity{}, false
	}
	return e.identity.Clone(), true
}

// Token returns the bearer token of the current identity.
func (e *Engine) Token() (string, bool) {
	if e == nil {
		return "", false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.identity == nil {
		return "", false
	}
	return e.identity.Token, true
}

// setIdentity replaces the in-memory identity. Callers hold opMu.
func (e *Engine) setIdentity(id *Identity) (cleared bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cleared = e.identity != nil && id == nil
	e.identity = id
	return cleared
}

func (e *Engine) current() *Identity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.identity == nil {
		return nil
	}
	cp := e.identity.Clone()
	return &cp
}
