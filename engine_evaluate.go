package goGuard

import "github.com/MrEthical07/goGuard/permission"

// HasPermission reports whether key is in the current permission set. It is false
// when signed out.
func (e *Engine) HasPermission(key string) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.identity != nil && e.identity.Permissions.Has(key)
}

// HasAnyPermission reports whether at least one of keys is held. An empty list is
// false.
func (e *Engine) HasAnyPermission(keys []string) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.identity != nil && e.identity.Permissions.HasAny(keys)
}

// HasAllPermissions reports whether every key is held.
//
// An empty list is vacuously true, even when signed out. Guards built on this method
// still check authentication first, so an empty requirement never admits an anonymous
// user.
func (e *Engine) HasAllPermissions(keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.identity != nil && e.identity.Permissions.HasAll(keys)
}

// HasRole reports whether the current role equals role.
func (e *Engine) HasRole(role permission.Role) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.identity != nil && permission.HasRole(e.identity.Role, role)
}

// HasAnyRole reports whether the current role is one of roles.
func (e *Engine) HasAnyRole(roles []permission.Role) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.identity != nil && permission.HasAnyRole(e.identity.Role, roles)
}
