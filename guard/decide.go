package guard

import (
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// State is the outcome of a guard decision.
type State int

const (
	// Loading means the session has not finished hydrating. Nothing is decided yet.
	Loading State = iota
	// Unauthenticated means no identity is present.
	Unauthenticated
	// Forbidden means an identity is present but does not meet the requirement.
	Forbidden
	// Authorized means the protected content may be shown.
	Authorized
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// View is the read-only session surface a guard consults. Decisions are made on one
// Identity snapshot, so a concurrent login or logout cannot mix two identities.
type View interface {
	Loading() bool
	Identity() (session.Identity, bool)
}

// Requirement declares what a route or component needs. Role and AnyRoles together
// form one set of accepted roles. Each non-empty permission field must be satisfied.
// The zero Requirement only requires authentication.
type Requirement struct {
	Role           permission.Role
	AnyRoles       []permission.Role
	Permission     string
	AnyPermissions []string
	AllPermissions []string
}

// Roles returns a Requirement accepting any of roles.
func Roles(roles ...permission.Role) Requirement {
	return Requirement{AnyRoles: roles}
}

// Permission returns a Requirement for a single permission key.
func Permission(key string) Requirement {
	return Requirement{Permission: key}
}

// AnyOf returns a Requirement satisfied by any of keys.
func AnyOf(keys ...string) Requirement {
	return Requirement{AnyPermissions: keys}
}

// AllOf returns a Requirement satisfied only by all of keys.
func AllOf(keys ...string) Requirement {
	return Requirement{AllPermissions: keys}
}

// Decision is a guard outcome together with the identity it was made for.
type Decision struct {
	State    State
	Identity session.Identity
}

// Decide evaluates req against v.
func Decide(v View, req Requirement) Decision {
	if v == nil {
		return Decision{State: Unauthenticated}
	}
	if v.Loading() {
		return Decision{State: Loading}
	}
	id, ok := v.Identity()
	if !ok {
		return Decision{State: Unauthenticated}
	}
	if !Satisfies(id, req) {
		return Decision{State: Forbidden, Identity: id}
	}
	return Decision{State: Authorized, Identity: id}
}

// Allowed reports whether req is met right now. It is false while loading.
func Allowed(v View, req Requirement) bool {
	return Decide(v, req).State == Authorized
}

// Satisfies reports whether id meets the role and permission parts of req.
func Satisfies(id session.Identity, req Requirement) bool {
	if req.Role != "" || len(req.AnyRoles) > 0 {
		roles := req.AnyRoles
		if req.Role != "" {
			roles = append([]permission.Role{req.Role}, roles...)
		}
		if !permission.HasAnyRole(id.Role, roles) {
			return false
		}
	}
	if req.Permission != "" && !id.Permissions.Has(req.Permission) {
		return false
	}
	if len(req.AnyPermissions) > 0 && !id.Permissions.HasAny(req.AnyPermissions) {
		return false
	}
	if len(req.AllPermissions) > 0 && !id.Permissions.HasAll(req.AllPermissions) {
		return false
	}
	return true
}
