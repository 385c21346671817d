package http

import (
	"context"
	"io"
	"testing"
	"time"

	"log/slog"

	"fieldpal/internal/auth"
	"fieldpal/internal/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(t *testing.T) *web.Renderer {
	t.Helper()
	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	return renderer
}

// pageViewRecorderStub satisfies metrics.Recorder and captures page
// labels.
type pageViewRecorderStub struct {
	pages []string
}

func (r *pageViewRecorderStub) RecordRequest(string, string, int, time.Duration) {}

func (r *pageViewRecorderStub) RecordPageView(page string) {
	r.pages = append(r.pages, page)
}

func (r *pageViewRecorderStub) RecordContactSubmission()   {}
func (r *pageViewRecorderStub) RecordNotificationFailure() {}

// verifierStub satisfies TokenVerifier with a programmable result.
type verifierStub struct {
	identity auth.Identity
	err      error
}

func (v *verifierStub) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if v.err != nil {
		return auth.Identity{}, v.err
	}
	return v.identity, nil
}

type capturedEvent struct {
	distinctID string
	event      string
	properties map[string]any
}

// capturerStub records capture and identify calls.
type capturerStub struct {
	events     []capturedEvent
	identifies []capturedEvent
	err        error
}

func (c *capturerStub) Capture(ctx context.Context, distinctID, event string, properties map[string]any) error {
	c.events = append(c.events, capturedEvent{distinctID: distinctID, event: event, properties: properties})
	return c.err
}

func (c *capturerStub) Identify(ctx context.Context, distinctID string, properties map[string]any) error {
	c.identifies = append(c.identifies, capturedEvent{distinctID: distinctID, properties: properties})
	return c.err
}

// authenticatorStub satisfies Authenticator with canned responses.
type authenticatorStub struct {
	loginURL    string
	loginErr    error
	token       string
	identity    auth.Identity
	exchangeErr error
	logoutURL   string

	exchanges int
}

func (a *authenticatorStub) LoginURL() (string, error) {
	return a.loginURL, a.loginErr
}

func (a *authenticatorStub) Exchange(ctx context.Context, code string) (string, auth.Identity, error) {
	a.exchanges++
	if a.exchangeErr != nil {
		return "", auth.Identity{}, a.exchangeErr
	}
	return a.token, a.identity, nil
}

func (a *authenticatorStub) LogoutURL() string {
	if a.logoutURL == "" {
		return "/"
	}
	return a.logoutURL
}
