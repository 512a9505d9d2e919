package goGuard

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGuard/session"
)

const (
	auditEventHydrateSuccess     = "hydrate_success"
	auditEventHydratePurged      = "hydrate_purged"
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLogout             = "logout"
	auditEventSessionInvalidated = "session_invalidated"
	auditEventProfileUpdated     = "profile_updated"
)

// AuditErrorCode is the stable error classification written to AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrIdentityInvalid    AuditErrorCode = "identity_invalid"
	auditErrNoIdentity         AuditErrorCode = "no_identity"
	auditErrPersistFailed      AuditErrorCode = "persist_failed"
	auditErrPurgeFailed        AuditErrorCode = "purge_failed"
	auditErrSnapshotCorrupt    AuditErrorCode = "snapshot_corrupt"
	auditErrSnapshotInvalid    AuditErrorCode = "snapshot_invalid"
	auditErrTokenPlaceholder   AuditErrorCode = "token_placeholder"
	auditErrTokenMissing       AuditErrorCode = "token_missing"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrBackendUnavailable AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	id *Identity,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Source:    sourceFromContext(ctx),
		RequestID: requestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if id != nil {
		event.UserID = id.ID
		event.Role = string(id.Role)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrIdentityInvalid):
		return auditErrIdentityInvalid
	case errors.Is(err, ErrNoIdentity):
		return auditErrNoIdentity
	case errors.Is(err, ErrSessionPersist):
		return auditErrPersistFailed
	case errors.Is(err, ErrSessionPurge):
		return auditErrPurgeFailed
	case errors.Is(err, session.ErrSnapshotCorrupt):
		return auditErrSnapshotCorrupt
	case errors.Is(err, session.ErrSnapshotInvalid),
		errors.Is(err, session.ErrOrphanToken):
		return auditErrSnapshotInvalid
	case errors.Is(err, session.ErrTokenPlaceholder):
		return auditErrTokenPlaceholder
	case errors.Is(err, session.ErrTokenMissing):
		return auditErrTokenMissing
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, session.ErrBackendUnavailable):
		return auditErrBackendUnavailable
	default:
		return auditErrInternal
	}
}
