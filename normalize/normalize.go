package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGuard/jwt"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
	"github.com/google/uuid"
)

const fallbackDisplayName = "User"

var (
	tokenFields      = []string{"token", "accessToken", "access_token", "jwt"}
	roleFields       = []string{"role", "roleName", "userType", "type"}
	idFields         = []string{"id", "_id", "userId", "user_id"}
	emailFields      = []string{"email", "mail"}
	nameFields       = []string{"name", "fullName", "displayName", "username"}
	firstNameFields  = []string{"firstName", "first_name"}
	lastNameFields   = []string{"lastName", "last_name"}
	permissionFields = []string{"permissions", "authorities"}

	sourcePaths = [][]string{
		nil,
		{"user"},
		{"profile"},
		{"data"},
		{"data", "user"},
		{"data", "profile"},
	}
)

// reserved fields are never copied into identity attributes.
var reserved = func() map[string]struct{} {
	m := map[string]struct{}{
		"refreshToken": {}, "refresh_token": {}, "password": {}, "passwordHash": {},
		"user": {}, "profile": {}, "data": {}, "message": {}, "success": {}, "expiresIn": {},
	}
	for _, group := range [][]string{tokenFields, roleFields, idFields, emailFields, nameFields, firstNameFields, lastNameFields, permissionFields} {
		for _, f := range group {
			m[f] = struct{}{}
		}
	}
	return m
}()

// Config configures a Normalizer.
type Config struct {
	// Catalog resolves raw role strings. Required.
	Catalog *permission.Catalog

	// AllowDemoFallback enables an identity created without a backend-issued token.
	// Off by default; it must only be enabled for offline demos.
	AllowDemoFallback bool

	// DemoPermissions supplies the permissions of demo identities by role.
	DemoPermissions permission.Table
}

// Normalizer applies the field priority lists of one application.
type Normalizer struct {
	cfg Config
}

// Result is a normalized identity. Demo marks identities that no backend confirmed.
type Result struct {
	Identity session.Identity
	Demo     bool
}

// Profile holds the fields found in a profile response. Found flags separate "absent"
// from "present but empty".
type Profile struct {
	ID               string
	DisplayName      string
	Email            string
	Role             permission.Role
	RoleFound        bool
	Permissions      permission.Set
	PermissionsFound bool
	Attributes       map[string]string
}

// New validates cfg and returns a Normalizer.
func New(cfg Config) (*Normalizer, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("normalize: catalog required")
	}
	if cfg.DemoPermissions != nil {
		if err := cfg.DemoPermissions.Validate(cfg.Catalog); err != nil {
			return nil, fmt.Errorf("normalize: %w", err)
		}
	}
	if cfg.AllowDemoFallback && cfg.Catalog.DefaultRole() == "" {
		return nil, errors.New("normalize: demo fallback requires a default role")
	}
	return &Normalizer{cfg: cfg}, nil
}

// Decode parses a JSON object body. Numbers are kept as json.Number so numeric IDs
// survive unchanged.
func Decode(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("response body is not a JSON object")
	}
	return payload, nil
}

// Identity extracts a complete identity from a login or registration payload. It
// returns false when no token can be found, unless the demo fallback is enabled, in
// which case a demo identity is returned.
func (n *Normalizer) Identity(payload map[string]any) (Result, bool) {
	sources := collectSources(payload)

	token := firstToken(sources)
	if token == "" {
		return n.Demo(firstString(sources, emailFields))
	}

	claims, _ := jwt.Inspect(token)

	p := n.profile(sources, claims)
	if !p.RoleFound {
		role, ok := n.cfg.Catalog.Resolve(claims.Role)
		if !ok {
			return Result{}, false
		}
		p.Role = role
	}

	id := session.Identity{
		ID:          p.ID,
		DisplayName: displayName(p.DisplayName, p.Email),
		Email:       p.Email,
		Role:        p.Role,
		Permissions: p.Permissions,
		Token:       token,
		Attributes:  p.Attributes,
	}
	if id.Permissions == nil {
		id.Permissions = permission.Set{}
	}
	return Result{Identity: id}, true
}

// Profile extracts profile fields from a "current user" payload. No token is required;
// unresolvable roles fall back to the catalog default.
func (n *Normalizer) Profile(payload map[string]any) Profile {
	return n.profile(collectSources(payload), jwt.Claims{})
}

// Demo builds an unconfirmed identity for the default role. It returns false unless
// AllowDemoFallback is set.
func (n *Normalizer) Demo(emailHint string) (Result, bool) {
	if !n.cfg.AllowDemoFallback {
		return Result{}, false
	}
	role := n.cfg.Catalog.DefaultRole()
	if role == "" {
		return Result{}, false
	}
	email := strings.TrimSpace(emailHint)
	return Result{
		Identity: session.Identity{
			ID:          "demo-" + uuid.NewString(),
			DisplayName: displayName("", email),
			Email:       email,
			Role:        role,
			Permissions: n.cfg.DemoPermissions.Permissions(role),
			Token:       "demo-" + uuid.NewString(),
		},
		Demo: true,
	}, true
}

func (n *Normalizer) profile(sources []map[string]any, claims jwt.Claims) Profile {
	p := Profile{
		ID:          firstString(sources, idFields),
		DisplayName: firstString(sources, nameFields),
		Email:       firstString(sources, emailFields),
	}
	if p.ID == "" {
		p.ID = claims.Subject
	}
	if p.DisplayName == "" {
		first := firstString(sources, firstNameFields)
		last := firstString(sources, lastNameFields)
		p.DisplayName = strings.TrimSpace(first + " " + last)
	}

	if role, ok := n.resolveRole(roleCandidates(sources), claims.Role); ok {
		p.Role = role
		p.RoleFound = true
	}

	if perms, ok := firstPermissions(sources); ok {
		p.Permissions = perms
		p.PermissionsFound = true
	}

	p.Attributes = attributes(sources)
	return p
}

func displayName(explicit, email string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return fallbackDisplayName
}

func collectSources(payload map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(sourcePaths))
	for _, path := range sourcePaths {
		if obj, ok := lookupObject(payload, path); ok {
			out = append(out, obj)
		}
	}
	return out
}

func lookupObject(root map[string]any, path []string) (map[string]any, bool) {
	cur := root
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

func firstToken(sources []map[string]any) string {
	for _, src := range sources {
		for _, f := range tokenFields {
			s, ok := scalarString(src[f])
			if ok && !session.IsPlaceholderToken(s) {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstString(sources []map[string]any, fields []string) string {
	for _, src := range sources {
		for _, f := range fields {
			if s, ok := scalarString(src[f]); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// roleCandidates returns every non-empty role value, sources first, then fields.
func roleCandidates(sources []map[string]any) []string {
	var out []string
	for _, src := range sources {
		for _, f := range roleFields {
			switch v := src[f].(type) {
			case string:
				if strings.TrimSpace(v) != "" {
					out = append(out, v)
				}
			case map[string]any:
				if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// resolveRole picks the first candidate the catalog knows, then the token's role
// claim. The default role only applies when candidates exist and none is known.
func (n *Normalizer) resolveRole(candidates []string, claimRole string) (permission.Role, bool) {
	for _, raw := range candidates {
		if role, ok := n.cfg.Catalog.Lookup(raw); ok {
			return role, true
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	if role, ok := n.cfg.Catalog.Lookup(claimRole); ok {
		return role, true
	}
	return n.cfg.Catalog.Resolve(candidates[0])
}

func firstPermissions(sources []map[string]any) (permission.Set, bool) {
	for _, src := range sources {
		for _, f := range permissionFields {
			list, ok := src[f].([]any)
			if !ok {
				continue
			}
			keys := make([]string, 0, len(list))
			for _, item := range list {
				switch v := item.(type) {
				case string:
					keys = append(keys, v)
				case map[string]any:
					if name, ok := v["name"].(string); ok {
						keys = append(keys, name)
					}
				}
			}
			return permission.NewSet(keys...), true
		}
	}
	return nil, false
}

// attributes copies the remaining scalar fields of the most specific user object.
func attributes(sources []map[string]any) map[string]string {
	if len(sources) == 0 {
		return nil
	}
	src := sources[len(sources)-1]
	for i := 1; i < len(sources); i++ {
		if firstString([]map[string]any{sources[i]}, idFields) != "" {
			src = sources[i]
			break
		}
	}

	var out map[string]string
	for k, v := range src {
		if _, skip := reserved[k]; skip {
			continue
		}
		s, ok := scalarString(v)
		if !ok || s == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = s
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return fmt.Sprintf("%v", t), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	}
	return "", false
}
