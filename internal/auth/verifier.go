package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Verifier validates RS256 bearer tokens issued by the identity
// provider against its published key set.
type Verifier struct {
	domain   string
	audience string
	keys     *keyCache
}

// NewVerifier constructs a Verifier for the given provider domain
// (scheme-less) and API audience. client is used for the one-time
// key-set fetch; nil uses http.DefaultClient.
func NewVerifier(domain, audience string, client *http.Client) *Verifier {
	return &Verifier{
		domain:   domain,
		audience: audience,
		keys:     newKeyCache("https://"+domain+"/.well-known/jwks.json", client),
	}
}

// newVerifierWithJWKSURL is used by tests to point the key fetch at a
// local server.
func newVerifierWithJWKSURL(domain, audience, jwksURL string, client *http.Client) *Verifier {
	return &Verifier{
		domain:   domain,
		audience: audience,
		keys:     newKeyCache(jwksURL, client),
	}
}

func (v *Verifier) issuer() string {
	// Trailing slash matters: it is how the provider mints iss.
	return "https://" + v.domain + "/"
}

// Verify checks the token's signature and claims and returns the
// decoded identity. Every verification failure collapses to
// ErrUnauthorized with a descriptive message; a failed key-set fetch is
// ErrUpstream; missing provider settings are ErrConfiguration.
func (v *Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	if v.domain == "" || v.audience == "" {
		return Identity{}, fmt.Errorf("%w: domain or audience unset", ErrConfiguration)
	}

	set, err := v.keys.get(ctx)
	if err != nil {
		return Identity{}, err
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer()),
		jwt.WithExpirationRequired(),
	)

	if _, err := parser.ParseWithClaims(token, claims, keyLookup(set)); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return identityFromClaims(claims), nil
}

// keyLookup resolves the verification key by exact kid match against
// the cached set. A miss is a verification failure; there is no
// fallback to the first key and no re-fetch.
func keyLookup(set jwk.Set) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token header missing kid")
		}

		key, found := set.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("key %q not found in key set", kid)
		}

		var raw any
		if err := jwk.Export(key, &raw); err != nil {
			return nil, fmt.Errorf("export key %q: %w", kid, err)
		}
		return raw, nil
	}
}
