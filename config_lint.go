package goGuard

import "time"

// LintSeverity ranks a LintWarning.
type LintSeverity int

const (
	// LintInfo marks a setting worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn marks a setting that weakens the session lifecycle.
	LintWarn
)

// LintWarning is one advisory finding. Lint never rejects a configuration; Validate does.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list returned by Config.Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, len(r))
	for i, w := range r {
		out[i] = w.Code
	}
	return out
}

// Lint reports settings that are valid but risky.
func (c *Config) Lint() LintResult {
	var ws LintResult

	if c.Normalize.AllowDemoFallback {
		ws = append(ws, LintWarning{
			Code:     "demo_fallback_enabled",
			Severity: LintWarn,
			Message:  "logins without a backend token create local demo identities",
		})
	}
	if !c.Session.RejectExpiredTokens {
		ws = append(ws, LintWarning{
			Code:     "expiry_check_disabled",
			Severity: LintWarn,
			Message:  "expired JWTs are restored from storage until the backend rejects them",
		})
	}
	if c.Session.ExpiryLeeway > time.Minute {
		ws = append(ws, LintWarning{
			Code:     "leeway_large",
			Severity: LintInfo,
			Message:  "expiry leeway above one minute",
		})
	}
	if c.Transport.RetryGETWithoutAuthOn500 {
		ws = append(ws, LintWarning{
			Code:     "retry_without_auth",
			Severity: LintInfo,
			Message:  "failed GET requests are retried anonymously",
		})
	}
	if len(c.Transport.PublicPaths) == 0 {
		ws = append(ws, LintWarning{
			Code:     "no_public_paths",
			Severity: LintWarn,
			Message:  "login requests will carry stale credentials",
		})
	}
	if len(c.Roles.Permissions) == 0 {
		ws = append(ws, LintWarning{
			Code:     "permission_catalog_empty",
			Severity: LintInfo,
			Message:  "any permission key is accepted",
		})
	}
	if c.Roles.DefaultRole == "" {
		ws = append(ws, LintWarning{
			Code:     "no_default_role",
			Severity: LintInfo,
			Message:  "responses with unrecognized roles are rejected",
		})
	}
	return ws
}
