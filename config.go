package goGuard

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goGuard/permission"
)

// Config defines how one application's Engine persists sessions, resolves roles and
// talks to its backend.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session   SessionConfig
	Roles     RolesConfig
	Normalize NormalizeConfig
	Transport TransportConfig
	Guard     GuardConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the persisted session record.
type SessionConfig struct {
	// KeyPrefix namespaces the snapshot and token keys, e.g. "grocery.".
	KeyPrefix string

	// RejectExpiredTokens purges a persisted session whose token is a JWT past its
	// exp claim. Opaque tokens are never considered expired.
	RejectExpiredTokens bool
	ExpiryLeeway        time.Duration
}

/*
====================================
ROLES CONFIG
====================================
*/

// RolesConfig is the application's fixed role enumeration and permission catalog.
// Permissions is optional; when empty any non-empty key is accepted.
type RolesConfig struct {
	Roles       []permission.Role
	Permissions []string
	Aliases     map[string]permission.Role
	DefaultRole permission.Role

	// DemoPermissions is only consulted for demo identities.
	DemoPermissions permission.Table
}

/*
====================================
NORMALIZE CONFIG
====================================
*/

// NormalizeConfig controls backend response normalization.
type NormalizeConfig struct {
	// AllowDemoFallback creates a local demo identity when a login response carries no
	// token. Never enable it against a real backend.
	AllowDemoFallback bool
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig controls outbound request augmentation.
type TransportConfig struct {
	PublicPaths              []string
	RetryGETWithoutAuthOn500 bool
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig controls HTTP guard responses.
type GuardConfig struct {
	LoginPath  string
	RetryAfter time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			KeyPrefix:           "goguard.",
			RejectExpiredTokens: true,
			ExpiryLeeway:        30 * time.Second,
		},
		Normalize: NormalizeConfig{
			AllowDemoFallback: false,
		},
		Transport: TransportConfig{
			PublicPaths:              []string{"/auth/login", "/auth/register"},
			RetryGETWithoutAuthOn500: false,
		},
		Guard: GuardConfig{
			LoginPath:  "/login",
			RetryAfter: time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the baseline configuration. Roles must still be filled in.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Roles.Roles = append([]permission.Role(nil), cfg.Roles.Roles...)
	out.Roles.Permissions = append([]string(nil), cfg.Roles.Permissions...)
	if cfg.Roles.Aliases != nil {
		out.Roles.Aliases = make(map[string]permission.Role, len(cfg.Roles.Aliases))
		for k, v := range cfg.Roles.Aliases {
			out.Roles.Aliases[k] = v
		}
	}
	if cfg.Roles.DemoPermissions != nil {
		out.Roles.DemoPermissions = make(permission.Table, len(cfg.Roles.DemoPermissions))
		for k, v := range cfg.Roles.DemoPermissions {
			out.Roles.DemoPermissions[k] = append([]string(nil), v...)
		}
	}
	out.Transport.PublicPaths = append([]string(nil), cfg.Transport.PublicPaths...)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	// Session
	if strings.ContainsAny(c.Session.KeyPrefix, " \t\r\n/\\") {
		return errors.New("Session KeyPrefix must not contain whitespace or path separators")
	}
	if c.Session.ExpiryLeeway < 0 || c.Session.ExpiryLeeway > 5*time.Minute {
		return errors.New("Session ExpiryLeeway must be between 0 and 5m")
	}

	// Roles
	if len(c.Roles.Roles) == 0 {
		return errors.New("Roles must not be empty")
	}
	roles := make(map[permission.Role]struct{}, len(c.Roles.Roles))
	for _, r := range c.Roles.Roles {
		canon := permission.CanonicalRole(string(r))
		if canon == "" {
			return errors.New("Roles must not contain empty names")
		}
		roles[canon] = struct{}{}
	}
	if c.Roles.DefaultRole != "" {
		if _, ok := roles[permission.CanonicalRole(string(c.Roles.DefaultRole))]; !ok {
			return errors.New("Roles DefaultRole must be one of Roles")
		}
	}
	for alias, target := range c.Roles.Aliases {
		if _, ok := roles[permission.CanonicalRole(string(target))]; !ok {
			return errors.New("Roles alias " + alias + " targets an unknown role")
		}
	}

	// Normalize
	if c.Normalize.AllowDemoFallback && c.Roles.DefaultRole == "" {
		return errors.New("Normalize AllowDemoFallback requires Roles DefaultRole")
	}

	// Guard
	if c.Guard.LoginPath != "" && !strings.HasPrefix(c.Guard.LoginPath, "/") {
		return errors.New("Guard LoginPath must be an absolute path")
	}
	if c.Guard.RetryAfter < 0 {
		return errors.New("Guard RetryAfter must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
