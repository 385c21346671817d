package auth

import (
	"fmt"
	"strings"
)

// Gate authorizes verified identities against a flat allow-list of
// provider-issued user ids. No role or group claims are consulted.
type Gate struct {
	allowed map[string]struct{}
}

// NewGate constructs a Gate from the configured admin ids.
func NewGate(adminIDs []string) *Gate {
	allowed := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			allowed[id] = struct{}{}
		}
	}
	return &Gate{allowed: allowed}
}

// Authorize returns nil iff the identity's stable id is on the
// allow-list, otherwise ErrForbidden. An authenticated-but-forbidden
// caller gets a 403, never a login redirect.
func (g *Gate) Authorize(identity Identity) error {
	id := identity.StableID()
	if id == "" {
		return fmt.Errorf("%w: token carries no user id", ErrForbidden)
	}
	if _, ok := g.allowed[id]; !ok {
		return fmt.Errorf("%w: user %s is not an administrator", ErrForbidden, id)
	}
	return nil
}
