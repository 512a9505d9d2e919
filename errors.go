package goGuard

import "errors"

var (
	// ErrEngineNotReady is returned by operations on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrIdentityInvalid is returned by Login when the identity has no usable token or
	// its role is not part of the catalog.
	ErrIdentityInvalid = errors.New("invalid identity")
	// ErrNoIdentity is returned when a backend response carries no usable identity.
	ErrNoIdentity = errors.New("response carries no usable identity")
	// ErrSessionPersist is returned when a login could not be written to storage. The
	// session is left signed out.
	ErrSessionPersist = errors.New("session could not be persisted")
	// ErrSessionPurge is returned by Logout when storage could not be cleared. The
	// in-memory identity is cleared regardless.
	ErrSessionPurge = errors.New("session storage could not be purged")
	// ErrTokenExpired marks a persisted JWT whose exp claim has passed.
	ErrTokenExpired = errors.New("session token expired")
	// ErrNotAuthenticated is returned by operations that need a signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
)
