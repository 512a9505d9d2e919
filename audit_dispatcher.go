package goGuard

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditItem is either an event or a flush marker queued behind earlier events.
type auditItem struct {
	event   AuditEvent
	flushed chan struct{}
}

// auditDispatcher delivers lifecycle events to the sink from one goroutine, in the
// order the session changed. Every event carries a sequence number assigned when it
// is queued; a gap in Seq at the sink means events were dropped.
//
// Events that end a session (logout, invalidation, purge on hydrate) are never
// dropped for a full buffer, even with DropIfFull: they wait for room like any event
// without it. Flush lets a caller make sure those events reached the sink before it
// acts on the new state, e.g. redirects to the login page or exits.
type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	queue     chan auditItem
	done      chan struct{}
	wg        sync.WaitGroup
	seq       atomic.Uint64
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make(chan auditItem, cfg.BufferSize),
		done:  make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case item := <-d.queue:
			d.deliver(item)
		case <-d.done:
			for {
				select {
				case item := <-d.queue:
					d.deliver(item)
				default:
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) deliver(item auditItem) {
	if item.flushed != nil {
		close(item.flushed)
		return
	}
	d.sink.Emit(context.Background(), item.event)
}

// sessionEnding reports whether eventType records the end of a session.
func sessionEnding(eventType string) bool {
	switch eventType {
	case auditEventLogout, auditEventSessionInvalidated, auditEventHydratePurged:
		return true
	}
	return false
}

// Emit numbers and queues event. A full buffer drops ordinary events under
// DropIfFull; everything else waits until there is room, ctx ends or the dispatcher
// closes.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event.Seq = d.seq.Add(1)
	item := auditItem{event: event}

	if d.cfg.DropIfFull && !sessionEnding(event.EventType) {
		select {
		case d.queue <- item:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- item:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.done:
	}
}

// Flush returns once every event queued before the call was handed to the sink.
func (d *auditDispatcher) Flush(ctx context.Context) error {
	if d == nil || d.closed.Load() {
		return nil
	}
	marker := auditItem{flushed: make(chan struct{})}

	select {
	case d.queue <- marker:
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-marker.flushed:
		return nil
	case <-d.done:
		d.wg.Wait()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
