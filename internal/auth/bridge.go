package auth

import (
	"net/http"
	"strings"
)

// CookieName is the http-only cookie holding the access token between
// requests. There is no server-side session store.
const CookieName = "auth_token"

// TokenFromRequest extracts the bearer token from the Authorization
// header or, failing that, the auth cookie. The header wins when both
// are present. Returns empty string for anonymous requests, which
// callers treat as 401 (protected routes) or "not signed in"
// (personalized pages).
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}

	cookie, err := r.Cookie(CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
