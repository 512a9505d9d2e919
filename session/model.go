package session

import "github.com/MrEthical07/goGuard/permission"

// Identity is the in-memory authenticated user: display data, role, permission set
// and bearer token.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	Role        permission.Role
	Permissions permission.Set
	Token       string
	Attributes  map[string]string
}

// Clone returns a deep copy of i.
func (i Identity) Clone() Identity {
	out := i
	out.Permissions = i.Permissions.Clone()
	if i.Attributes != nil {
		out.Attributes = make(map[string]string, len(i.Attributes))
		for k, v := range i.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Snapshot is the persisted JSON form of an Identity.
type Snapshot struct {
	Version     int               `json:"v"`
	ID          string            `json:"id,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
	Email       string            `json:"email,omitempty"`
	Role        string            `json:"role"`
	Permissions []string          `json:"permissions"`
	Attributes  map[string]string `json:"attributes,omitempty"`

	// Token is only read, for snapshots written by older clients.
	Token string `json:"token,omitempty"`
}

// Identity converts the snapshot into an Identity carrying token. The role is copied
// verbatim; callers validate it against their catalog.
func (s *Snapshot) Identity(token string) Identity {
	id := Identity{
		ID:          s.ID,
		DisplayName: s.DisplayName,
		Email:       s.Email,
		Role:        permission.Role(s.Role),
		Permissions: permission.NewSet(s.Permissions...),
		Token:       token,
	}
	if len(s.Attributes) > 0 {
		id.Attributes = make(map[string]string, len(s.Attributes))
		for k, v := range s.Attributes {
			id.Attributes[k] = v
		}
	}
	return id
}
