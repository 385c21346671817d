package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is a decoded token payload. It is derived per request and
// never stored server-side.
type Identity struct {
	Subject string
	Email   string
	Claims  jwt.MapClaims
}

// StableID returns the provider-issued user id used for allow-list
// checks: the sub claim, falling back to a legacy user_id claim.
func (i Identity) StableID() string {
	if i.Subject != "" {
		return i.Subject
	}
	if id, ok := i.Claims["user_id"].(string); ok {
		return id
	}
	return ""
}

func identityFromClaims(claims jwt.MapClaims) Identity {
	identity := Identity{Claims: claims}
	if sub, ok := claims["sub"].(string); ok {
		identity.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	return identity
}
