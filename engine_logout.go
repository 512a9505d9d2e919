package goGuard

import (
	"context"
	"fmt"
)

// Logout clears the identity and purges the persisted record. It is idempotent. The
// identity is cleared even when the purge fails; the error wraps ErrSessionPurge.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	prev := e.current()
	e.setIdentity(nil)

	if err := e.store.Purge(ctx); err != nil {
		e.metricInc(MetricStorageFailure)
		e.logger.Error("session purge failed", "error", err)
		err = fmt.Errorf("%w: %v", ErrSessionPurge, err)
		e.emitAudit(ctx, auditEventLogout, false, prev, err, nil)
		return err
	}

	if prev != nil {
		e.metricInc(MetricLogout)
		e.logger.Info("signed out", "user_id", prev.ID)
		e.emitAudit(ctx, auditEventLogout, true, prev, nil, nil)
	}
	return nil
}

// Invalidate clears the session after the backend rejected its token. Storage is
// always purged. The result is true only when an identity was actually cleared, so
// callers that redirect to a login page do so once even when several rejections
// arrive together.
func (e *Engine) Invalidate(ctx context.Context, reason string) bool {
	return e.invalidate(ctx, "", false, reason)
}

// InvalidateToken is Invalidate scoped to the token a rejected request carried. When
// a different session has been established since, it is left untouched and false is
// returned. An empty token matches any session.
func (e *Engine) InvalidateToken(ctx context.Context, token, reason string) bool {
	return e.invalidate(ctx, token, token != "", reason)
}

func (e *Engine) invalidate(ctx context.Context, token string, scoped bool, reason string) bool {
	if e == nil || e.store == nil {
		return false
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	prev := e.current()
	if scoped && prev != nil && prev.Token != token {
		e.logger.Debug("rejection for a replaced session ignored", "reason", reason, "user_id", prev.ID)
		return false
	}
	cleared := e.setIdentity(nil)

	if err := e.store.Purge(ctx); err != nil {
		e.metricInc(MetricStorageFailure)
		e.logger.Error("session purge failed", "reason", reason, "error", err)
	}

	if !cleared {
		return false
	}

	e.metricInc(MetricSessionInvalidated)
	e.logger.Warn("session invalidated", "reason", reason, "user_id", prev.ID)
	e.emitAudit(ctx, auditEventSessionInvalidated, true, prev, nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	return true
}
