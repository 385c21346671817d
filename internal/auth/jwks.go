package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// keyCache holds the provider's key set for the lifetime of the
// process. It is populated lazily on first use and never refreshed, so
// a key rotation at the provider breaks verification until restart.
// A failed fetch is not cached; the next request tries again.
type keyCache struct {
	url    string
	client *http.Client

	mu  sync.Mutex
	set jwk.Set
}

func newKeyCache(url string, client *http.Client) *keyCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &keyCache{url: url, client: client}
}

// get returns the cached key set, fetching it on first use. Fetch
// failures surface as ErrUpstream.
func (c *keyCache) get(ctx context.Context) (jwk.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set != nil {
		return c.set, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build key-set request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch key set: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: key-set endpoint returned %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read key set: %v", ErrUpstream, err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse key set: %v", ErrUpstream, err)
	}

	c.set = set
	return c.set, nil
}
