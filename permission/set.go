package permission

import (
	"sort"
	"strings"
)

// Set is an unordered, duplicate-free collection of permission keys.
// The nil Set is valid and empty.
type Set map[string]struct{}

// NewSet builds a Set from keys. Surrounding whitespace is trimmed and empty keys are
// dropped; duplicates collapse.
func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is a member of s.
func (s Set) Has(key string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[key]
	return ok
}

// HasAny reports whether at least one of keys is in s. An empty keys list is false.
func (s Set) HasAny(keys []string) bool {
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// HasAll reports whether every key is in s. An empty keys list is vacuously true.
func (s Set) HasAll(keys []string) bool {
	for _, k := range keys {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Len returns the number of keys.
func (s Set) Len() int {
	return len(s)
}

// Keys returns the members in sorted order.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
