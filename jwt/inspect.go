package jwt

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields goGuard reads from an access token.
type Claims struct {
	Subject     string
	Role        string
	Permissions []string
	ExpiresAt   time.Time
	IssuedAt    time.Time
}

// Inspect decodes tok as a JWT without verifying its signature. It returns false when
// tok is not a structurally valid JWT, which is normal for opaque tokens.
func Inspect(tok string) (Claims, bool) {
	tok = strings.TrimSpace(tok)
	if strings.Count(tok, ".") != 2 {
		return Claims{}, false
	}

	var parsed AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &parsed); err != nil {
		return Claims{}, false
	}

	out := Claims{
		Subject:     parsed.Subject,
		Role:        parsed.Role,
		Permissions: parsed.Permissions,
	}
	if out.Subject == "" {
		out.Subject = parsed.UID
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	return out, true
}

// Expired reports whether tok is a JWT whose exp claim lies before now-leeway.
// Opaque tokens and JWTs without exp are never expired.
func Expired(tok string, now time.Time, leeway time.Duration) bool {
	c, ok := Inspect(tok)
	if !ok || c.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(-leeway).After(c.ExpiresAt)
}
