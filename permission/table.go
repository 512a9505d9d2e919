package permission

import "errors"

// Table maps roles to a default permission list. It is plain data supplied by the
// application; goGuard consults it only when building an opt-in demo identity, never
// for identities confirmed by a backend.
type Table map[Role][]string

// Permissions returns the Set configured for role. Unknown roles yield an empty Set.
func (t Table) Permissions(role Role) Set {
	if t == nil {
		return Set{}
	}
	return NewSet(t[role]...)
}

// Validate checks every role and key of t against c.
func (t Table) Validate(c *Catalog) error {
	if c == nil {
		return errors.New("nil catalog")
	}
	for role, keys := range t {
		if !c.ValidRole(role) {
			return errors.New("role table references unknown role: " + string(role))
		}
		for _, k := range keys {
			if !c.KnownPermission(k) {
				return errors.New("role table references unknown permission: " + k)
			}
		}
	}
	return nil
}
