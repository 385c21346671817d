// Package auth implements bearer-token verification against the
// identity provider's published key set, the admin allow-list, and the
// authorization-code exchange flow.
package auth

import "errors"

var (
	// ErrUnauthorized covers every token verification failure: missing
	// token, unknown key, bad signature, wrong audience or issuer,
	// expiry. The failures are distinguishable only by message.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a verified identity that is not on the admin
	// allow-list.
	ErrForbidden = errors.New("forbidden")

	// ErrConfiguration marks missing provider settings (domain, client
	// id, audience). Rendered as a configuration error, never a 500.
	ErrConfiguration = errors.New("identity provider not configured")

	// ErrUpstream marks identity-provider call failures (key-set fetch,
	// token exchange), distinct from Unauthorized.
	ErrUpstream = errors.New("identity provider request failed")
)
