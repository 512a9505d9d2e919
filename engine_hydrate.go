package goGuard

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGuard/jwt"
	"github.com/MrEthical07/goGuard/session"
)

// Hydrate restores the persisted session. A well-formed record becomes the current
// identity; anything else (corrupt JSON, unknown schema, a role outside the catalog,
// a missing or placeholder token, an expired JWT, an unreadable backend) is purged and
// the session stays signed out. Hydrate always ends the loading state and never fails.
//
// Hydrate may be called again to re-read storage, e.g. after another process logged
// in with the same backend.
func (e *Engine) Hydrate(ctx context.Context) HydrateResult {
	if e == nil {
		return HydrateResult{}
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	start := e.now()
	id, err := e.restore(ctx)

	var result HydrateResult
	switch {
	case err == nil:
		result.Outcome = HydrateRestored
		e.setIdentity(id)
	case errors.Is(err, session.ErrNoSession):
		result.Outcome = HydrateEmpty
		e.setIdentity(nil)
	default:
		result.Outcome = HydratePurged
		result.Reason = string(auditErrorCode(err))
		e.setIdentity(nil)
		if perr := e.store.Purge(ctx); perr != nil {
			e.metricInc(MetricStorageFailure)
			e.logger.Error("purge of malformed session failed", "error", perr)
		}
	}

	e.mu.Lock()
	e.loading = false
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.Observe(MetricHydrateLatency, e.now().Sub(start))
	}

	switch result.Outcome {
	case HydrateRestored:
		e.metricInc(MetricHydrateRestored)
		e.logger.Info("session restored", "user_id", id.ID, "role", string(id.Role))
		e.emitAudit(ctx, auditEventHydrateSuccess, true, id, nil, nil)
	case HydrateEmpty:
		e.metricInc(MetricHydrateEmpty)
		e.logger.Debug("no persisted session")
	case HydratePurged:
		e.metricInc(MetricHydratePurged)
		e.logger.Warn("persisted session purged", "reason", result.Reason, "error", err)
		e.emitAudit(ctx, auditEventHydratePurged, false, nil, err, func() map[string]string {
			return map[string]string{"reason": result.Reason}
		})
	}

	return result
}

func (e *Engine) restore(ctx context.Context) (*Identity, error) {
	snap, token, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrBackendUnavailable) {
			e.metricInc(MetricStorageFailure)
		}
		return nil, err
	}

	role, ok := e.catalog.Lookup(snap.Role)
	if !ok {
		return nil, fmt.Errorf("%w: role %q not in catalog", session.ErrSnapshotInvalid, snap.Role)
	}

	if e.config.Session.RejectExpiredTokens && jwt.Expired(token, e.now(), e.config.Session.ExpiryLeeway) {
		return nil, ErrTokenExpired
	}

	id := snap.Identity(token)
	id.Role = role
	return &id, nil
}
