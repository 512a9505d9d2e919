package goGuard

import (
	"net/http"
	"time"

	"github.com/MrEthical07/goGuard/guard"
	"github.com/MrEthical07/goGuard/transport"
)

// Transport returns an http.RoundTripper over base that attaches this session's token
// and invalidates the session on 401/403. onExpired may be nil.
func (e *Engine) Transport(base http.RoundTripper, onExpired func(req *http.Request, status int)) *transport.Transport {
	return transport.New(base, e, e, transport.Config{
		PublicPaths:              e.config.Transport.PublicPaths,
		RetryGETWithoutAuthOn500: e.config.Transport.RetryGETWithoutAuthOn500,
		OnSessionExpired:         onExpired,
		Logger:                   e.logger,
	})
}

// Require returns guard middleware using the configured login path and retry delay.
// forbidden may be nil for the built-in access-denied page.
func (e *Engine) Require(req guard.Requirement, forbidden http.Handler) func(http.Handler) http.Handler {
	return guard.Require(e, req, guard.Options{
		LoginPath:  e.config.Guard.LoginPath,
		Forbidden:  forbidden,
		RetryAfter: int(e.config.Guard.RetryAfter / time.Second),
		Recorder:   e,
	})
}

// Allowed reports whether req is met by the current session.
func (e *Engine) Allowed(req guard.Requirement) bool {
	return guard.Allowed(e, req)
}

// RecordGuardDecision counts one guard outcome.
func (e *Engine) RecordGuardDecision(state string) {
	switch state {
	case guard.Loading.String():
		e.metricInc(MetricGuardLoading)
	case guard.Unauthenticated.String():
		e.metricInc(MetricGuardUnauthenticated)
	case guard.Forbidden.String():
		e.metricInc(MetricGuardForbidden)
	case guard.Authorized.String():
		e.metricInc(MetricGuardAuthorized)
	}
}
