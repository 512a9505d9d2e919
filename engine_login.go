package goGuard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrEthical07/goGuard/normalize"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// Login makes id the current identity and persists it.
//
// The token must be present and not a placeholder, and the role must resolve through
// the catalog; otherwise Login returns ErrIdentityInvalid and changes nothing. When
// the record cannot be written the storage is purged, the session is left signed out
// and ErrSessionPersist is returned.
func (e *Engine) Login(ctx context.Context, id Identity) error {
	return e.login(ctx, id, "login", false)
}

// LoginResponse normalizes a raw login response body and logs in with the result.
// A body without a usable token returns ErrNoIdentity and changes nothing.
func (e *Engine) LoginResponse(ctx context.Context, body []byte) (LoginResult, error) {
	return e.loginFromBody(ctx, body, "login")
}

// RegisterResponse is LoginResponse for registration responses.
func (e *Engine) RegisterResponse(ctx context.Context, body []byte) (LoginResult, error) {
	return e.loginFromBody(ctx, body, "register")
}

func (e *Engine) loginFromBody(ctx context.Context, body []byte, flow string) (LoginResult, error) {
	if e == nil || e.normalizer == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	payload, err := normalize.Decode(body)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrNoIdentity, err)
		e.loginFailed(ctx, flow, err)
		return LoginResult{}, err
	}

	res, ok := e.normalizer.Identity(payload)
	if !ok {
		e.loginFailed(ctx, flow, ErrNoIdentity)
		return LoginResult{}, ErrNoIdentity
	}

	if err := e.login(ctx, res.Identity, flow, res.Demo); err != nil {
		return LoginResult{}, err
	}
	if res.Demo {
		e.metricInc(MetricLoginDemo)
		e.logger.Warn("demo identity created without backend confirmation", "role", string(res.Identity.Role))
	}

	id, _ := e.Identity()
	return LoginResult{Identity: id, Demo: res.Demo}, nil
}

func (e *Engine) login(ctx context.Context, id Identity, flow string, demo bool) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	valid, err := e.validateIdentity(id)
	if err != nil {
		e.loginFailed(ctx, flow, err)
		return err
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if err := e.store.Save(ctx, valid); err != nil {
		e.metricInc(MetricStorageFailure)
		if perr := e.store.Purge(ctx); perr != nil {
			e.logger.Error("purge after failed persist failed", "error", perr)
		}
		e.setIdentity(nil)
		err = fmt.Errorf("%w: %v", ErrSessionPersist, err)
		e.loginFailed(ctx, flow, err)
		return err
	}

	e.setIdentity(&valid)

	e.metricInc(MetricLoginSuccess)
	e.logger.Info("signed in", "flow", flow, "user_id", valid.ID, "role", string(valid.Role))
	e.emitAudit(ctx, auditEventLoginSuccess, true, &valid, nil, func() map[string]string {
		return map[string]string{
			"flow":        flow,
			"demo":        strconv.FormatBool(demo),
			"permissions": strconv.Itoa(valid.Permissions.Len()),
		}
	})
	return nil
}

func (e *Engine) loginFailed(ctx context.Context, flow string, err error) {
	e.metricInc(MetricLoginFailure)
	e.logger.Warn("sign-in rejected", "flow", flow, "error", err)
	e.emitAudit(ctx, auditEventLoginFailure, false, nil, err, func() map[string]string {
		return map[string]string{"flow": flow}
	})
}

// validateIdentity returns a canonical deep copy of id.
func (e *Engine) validateIdentity(id Identity) (Identity, error) {
	if session.IsPlaceholderToken(id.Token) {
		return Identity{}, fmt.Errorf("%w: token missing", ErrIdentityInvalid)
	}
	role, ok := e.catalog.Lookup(string(id.Role))
	if !ok {
		return Identity{}, fmt.Errorf("%w: role %q not in catalog", ErrIdentityInvalid, id.Role)
	}

	out := id.Clone()
	out.Role = role
	out.Token = strings.TrimSpace(out.Token)
	if out.Permissions == nil {
		out.Permissions = permission.Set{}
	}
	return out, nil
}
