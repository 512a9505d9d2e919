package goGuard

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGuard/normalize"
)

// UpdateProfile merges u into the current identity and persists the result. It is a
// no-op when signed out. A role outside the catalog returns ErrIdentityInvalid; a
// failed write returns ErrSessionPersist and leaves the identity unchanged.
func (e *Engine) UpdateProfile(ctx context.Context, u ProfileUpdate) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	cur := e.current()
	if cur == nil || u.Empty() {
		return nil
	}

	next := *cur
	changed := make([]string, 0, 5)

	if u.DisplayName != nil {
		next.DisplayName = strings.TrimSpace(*u.DisplayName)
		changed = append(changed, "displayName")
	}
	if u.Email != nil {
		next.Email = strings.TrimSpace(*u.Email)
		changed = append(changed, "email")
	}
	if u.Role != nil {
		role, ok := e.catalog.Lookup(string(*u.Role))
		if !ok {
			return fmt.Errorf("%w: role %q not in catalog", ErrIdentityInvalid, *u.Role)
		}
		next.Role = role
		changed = append(changed, "role")
	}
	if u.Permissions != nil {
		next.Permissions = u.Permissions.Clone()
		changed = append(changed, "permissions")
	}
	if len(u.Attributes) > 0 {
		if next.Attributes == nil {
			next.Attributes = make(map[string]string, len(u.Attributes))
		}
		for k, v := range u.Attributes {
			if v == "" {
				delete(next.Attributes, k)
				continue
			}
			next.Attributes[k] = v
		}
		changed = append(changed, "attributes")
	}

	if err := e.store.Save(ctx, next); err != nil {
		e.metricInc(MetricStorageFailure)
		e.logger.Error("profile persist failed", "error", err)
		return fmt.Errorf("%w: %v", ErrSessionPersist, err)
	}
	e.setIdentity(&next)

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventProfileUpdated, true, &next, nil, func() map[string]string {
		return map[string]string{"fields": strings.Join(changed, ",")}
	})
	return nil
}

// ProfileResponse applies a "current user" response body through UpdateProfile. Only
// fields present in the body change.
func (e *Engine) ProfileResponse(ctx context.Context, body []byte) error {
	if e == nil || e.normalizer == nil {
		return ErrEngineNotReady
	}
	payload, err := normalize.Decode(body)
	if err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}

	p := e.normalizer.Profile(payload)
	var u ProfileUpdate
	if p.DisplayName != "" {
		u.DisplayName = &p.DisplayName
	}
	if p.Email != "" {
		u.Email = &p.Email
	}
	if p.RoleFound {
		u.Role = &p.Role
	}
	if p.PermissionsFound {
		u.Permissions = p.Permissions
	}
	u.Attributes = p.Attributes
	return e.UpdateProfile(ctx, u)
}
