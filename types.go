package goGuard

import (
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// Identity is the authenticated user held by an Engine.
type Identity = session.Identity

// Role is a coarse-grained user classification.
type Role = permission.Role

// ProfileUpdate carries the profile fields to change. Nil pointers and a nil
// Permissions set leave the current value unchanged. Attributes are merged; an empty
// value removes the attribute.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	Role        *permission.Role
	Permissions permission.Set
	Attributes  map[string]string
}

// Empty reports whether u changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Email == nil && u.Role == nil && u.Permissions == nil && len(u.Attributes) == 0
}

// HydrateOutcome reports what Hydrate found in storage.
type HydrateOutcome int

const (
	// HydrateEmpty means nothing was persisted.
	HydrateEmpty HydrateOutcome = iota
	// HydrateRestored means a well-formed session was restored.
	HydrateRestored
	// HydratePurged means a malformed or stale session was found and removed.
	HydratePurged
)

func (o HydrateOutcome) String() string {
	switch o {
	case HydrateRestored:
		return "restored"
	case HydratePurged:
		return "purged"
	default:
		return "empty"
	}
}

// HydrateResult describes one Hydrate pass. Reason is set when the outcome is
// HydratePurged.
type HydrateResult struct {
	Outcome HydrateOutcome
	Reason  string
}

// LoginResult is returned by the response-based login operations.
type LoginResult struct {
	Identity Identity
	// Demo marks an identity created without backend confirmation.
	Demo bool
}
