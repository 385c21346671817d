package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestGateAuthorize(t *testing.T) {
	gate := NewGate([]string{"auth0|alice", " auth0|bob ", ""})

	tests := []struct {
		name     string
		identity Identity
		allowed  bool
	}{
		{name: "listed subject", identity: Identity{Subject: "auth0|alice"}, allowed: true},
		{name: "listed subject is trimmed", identity: Identity{Subject: "auth0|bob"}, allowed: true},
		{name: "unlisted subject", identity: Identity{Subject: "auth0|mallory"}, allowed: false},
		{name: "no user id at all", identity: Identity{Claims: jwt.MapClaims{}}, allowed: false},
		{
			name:     "legacy user_id fallback",
			identity: Identity{Claims: jwt.MapClaims{"user_id": "auth0|alice"}},
			allowed:  true,
		},
		{
			name:     "sub preferred over user_id",
			identity: Identity{Subject: "auth0|mallory", Claims: jwt.MapClaims{"user_id": "auth0|alice"}},
			allowed:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := gate.Authorize(tc.identity)
			if tc.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestGateEmptyAllowList(t *testing.T) {
	gate := NewGate(nil)
	if err := gate.Authorize(Identity{Subject: "auth0|alice"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden with empty allow-list, got %v", err)
	}
}
