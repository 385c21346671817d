// Package analytics ships product events to a PostHog-compatible
// collection endpoint. Every call is best effort: callers log failures
// and never let them fail the primary action.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultHost = "https://us.i.posthog.com"

// Client posts single capture events. A Client with no project API key
// is disabled and silently drops every event.
type Client struct {
	client  *http.Client
	apiKey  string
	host    string
	appName string
}

// Option configures the Client during construction.
type Option func(*Client)

// WithHost overrides the collection endpoint base URL.
func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = strings.TrimRight(host, "/")
		}
	}
}

// NewClient constructs a Client.
func NewClient(client *http.Client, projectAPIKey string, opts ...Option) *Client {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	c := &Client{
		client:  client,
		apiKey:  projectAPIKey,
		host:    defaultHost,
		appName: "fieldpal-web",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether events will actually be shipped.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type captureRequest struct {
	APIKey     string         `json:"api_key"`
	Event      string         `json:"event"`
	DistinctID string         `json:"distinct_id"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Capture records a single event for a distinct id.
func (c *Client) Capture(ctx context.Context, distinctID, event string, properties map[string]any) error {
	if !c.Enabled() {
		return nil
	}
	if properties == nil {
		properties = map[string]any{}
	}
	properties["$lib"] = c.appName
	return c.post(ctx, captureRequest{
		APIKey:     c.apiKey,
		Event:      event,
		DistinctID: distinctID,
		Properties: properties,
	})
}

// Identify attaches person properties to a distinct id.
func (c *Client) Identify(ctx context.Context, distinctID string, properties map[string]any) error {
	if !c.Enabled() {
		return nil
	}
	return c.post(ctx, captureRequest{
		APIKey:     c.apiKey,
		Event:      "$identify",
		DistinctID: distinctID,
		Properties: map[string]any{"$set": properties, "$lib": c.appName},
	})
}

func (c *Client) post(ctx context.Context, payload captureRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("analytics: encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/capture/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("analytics: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics: send event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analytics: collection endpoint returned %d", resp.StatusCode)
	}
	return nil
}
