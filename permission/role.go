package permission

import "strings"

// Role is a coarse-grained tag classifying a user. Exactly one per identity.
type Role string

// String returns the role tag.
func (r Role) String() string {
	return string(r)
}

// CanonicalRole upper-cases raw, trims it, maps spaces and dashes to underscores and
// strips a leading "ROLE_" prefix. It performs no alias or catalog lookup.
func CanonicalRole(raw string) Role {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	s = strings.TrimPrefix(s, "ROLE_")
	return Role(s)
}

// HasRole reports whether current equals want. An empty current role never matches.
func HasRole(current, want Role) bool {
	return current != "" && current == want
}

// HasAnyRole reports whether current is one of roles. An empty list never matches.
func HasAnyRole(current Role, roles []Role) bool {
	if current == "" {
		return false
	}
	for _, r := range roles {
		if r == current {
			return true
		}
	}
	return false
}
