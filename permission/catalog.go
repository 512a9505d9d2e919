package permission

import (
	"errors"
	"sync"
)

var (
	// ErrCatalogFrozen is returned when registering into a frozen catalog.
	ErrCatalogFrozen = errors.New("catalog frozen")
	// ErrUnknownRole is returned when a role is not part of the catalog.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownPermission is returned when a key is not part of a non-empty permission catalog.
	ErrUnknownPermission = errors.New("unknown permission")
)

// Catalog holds one application's fixed role enumeration, its permission key catalog,
// the role alias table and the default role.
//
// Catalog instances are configured during initialization, frozen, and then only read.
type Catalog struct {
	mu sync.RWMutex

	roles       map[Role]struct{}
	order       []Role
	permissions map[string]struct{}
	aliases     map[Role]Role
	defaultRole Role
	frozen      bool
}

// NewCatalog creates a Catalog holding roles. Roles are canonicalized with
// [CanonicalRole].
func NewCatalog(roles ...Role) (*Catalog, error) {
	c := &Catalog{
		roles:       make(map[Role]struct{}, len(roles)),
		permissions: make(map[string]struct{}),
		aliases:     make(map[Role]Role),
	}
	for _, r := range roles {
		if err := c.RegisterRole(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RegisterRole adds a role to the enumeration.
func (c *Catalog) RegisterRole(r Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCatalogFrozen
	}
	r = CanonicalRole(string(r))
	if r == "" {
		return errors.New("role name cannot be empty")
	}
	if _, exists := c.roles[r]; exists {
		return errors.New("role already registered: " + string(r))
	}
	c.roles[r] = struct{}{}
	c.order = append(c.order, r)
	return nil
}

// RegisterPermission adds key to the permission catalog. A catalog with no
// registered permissions accepts any key.
func (c *Catalog) RegisterPermission(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCatalogFrozen
	}
	if key == "" {
		return errors.New("permission key cannot be empty")
	}
	if _, exists := c.permissions[key]; exists {
		return errors.New("permission already registered: " + key)
	}
	c.permissions[key] = struct{}{}
	return nil
}

// RegisterAlias maps alias onto a registered canonical role.
func (c *Catalog) RegisterAlias(alias string, target Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCatalogFrozen
	}
	a := CanonicalRole(alias)
	if a == "" {
		return errors.New("role alias cannot be empty")
	}
	target = CanonicalRole(string(target))
	if _, ok := c.roles[target]; !ok {
		return ErrUnknownRole
	}
	if _, clash := c.roles[a]; clash {
		return errors.New("role alias shadows a registered role: " + string(a))
	}
	c.aliases[a] = target
	return nil
}

// SetDefaultRole selects the role assigned when a backend role cannot be resolved.
func (c *Catalog) SetDefaultRole(r Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCatalogFrozen
	}
	r = CanonicalRole(string(r))
	if _, ok := c.roles[r]; !ok {
		return ErrUnknownRole
	}
	c.defaultRole = r
	return nil
}

// Freeze prevents further registrations.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// ValidRole reports whether r is a registered canonical role.
func (c *Catalog) ValidRole(r Role) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.roles[r]
	return ok
}

// KnownPermission reports whether key is in the permission catalog. Every key is
// known when no permissions were registered.
func (c *Catalog) KnownPermission(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.permissions) == 0 {
		return key != ""
	}
	_, ok := c.permissions[key]
	return ok
}

// Lookup canonicalizes raw and resolves it through the alias table. It returns false
// when the result is not a registered role.
func (c *Catalog) Lookup(raw string) (Role, bool) {
	r := CanonicalRole(raw)
	if r == "" {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if target, ok := c.aliases[r]; ok {
		r = target
	}
	if _, ok := c.roles[r]; !ok {
		return "", false
	}
	return r, true
}

// Resolve is [Catalog.Lookup] with the default role as fallback. The boolean is false
// only when raw is unresolvable and no default role is configured.
func (c *Catalog) Resolve(raw string) (Role, bool) {
	if r, ok := c.Lookup(raw); ok {
		return r, true
	}
	def := c.DefaultRole()
	return def, def != ""
}

// DefaultRole returns the configured default role, or "" when none is set.
func (c *Catalog) DefaultRole() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultRole
}

// Roles returns the registered roles in registration order.
func (c *Catalog) Roles() []Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Role, len(c.order))
	copy(out, c.order)
	return out
}

// Count returns the number of registered permission keys.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.permissions)
}
