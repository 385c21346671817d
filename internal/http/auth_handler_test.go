package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldpal/internal/auth"
)

func TestLoginRedirectsToProvider(t *testing.T) {
	stub := &authenticatorStub{loginURL: "https://tenant.example-idp.com/authorize?client_id=abc"}
	handler := NewAuthHandler(stub, newTestRenderer(t), nil, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != stub.loginURL {
		t.Fatalf("redirect location = %q", got)
	}
}

func TestLoginRendersConfigurationError(t *testing.T) {
	stub := &authenticatorStub{loginErr: fmt.Errorf("%w: domain or client id unset", auth.ErrConfiguration)}
	handler := NewAuthHandler(stub, newTestRenderer(t), nil, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("configuration error must render a page, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sign-in is not configured") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCallbackProviderErrorSkipsExchange(t *testing.T) {
	stub := &authenticatorStub{token: "should-not-be-used"}
	handler := NewAuthHandler(stub, newTestRenderer(t), nil, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?error=access_denied", nil))

	if stub.exchanges != 0 {
		t.Fatal("exchange must not run when the provider reports an error")
	}
	if !strings.Contains(rec.Body.String(), "Authentication error: access_denied") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie may be set on a failed callback")
	}
}

func TestCallbackMissingCode(t *testing.T) {
	stub := &authenticatorStub{}
	handler := NewAuthHandler(stub, newTestRenderer(t), nil, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

	if stub.exchanges != 0 {
		t.Fatal("exchange must not run without a code")
	}
	if !strings.Contains(rec.Body.String(), "No authorization code received") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCallbackSuccess(t *testing.T) {
	stub := &authenticatorStub{
		token:    "access-token-1",
		identity: auth.Identity{Subject: "auth0|alice", Email: "alice@fieldpal.ai"},
	}
	events := &capturerStub{}
	handler := NewAuthHandler(stub, newTestRenderer(t), events, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=the-code", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/admin" {
		t.Fatalf("redirect location = %q", got)
	}

	var tokenCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			tokenCookie = c
		}
	}
	if tokenCookie == nil {
		t.Fatal("auth cookie not set")
	}
	if tokenCookie.Value != "access-token-1" || !tokenCookie.HttpOnly {
		t.Fatalf("unexpected cookie %+v", tokenCookie)
	}

	if len(events.identifies) != 1 || events.identifies[0].distinctID != "auth0|alice" {
		t.Fatalf("expected identify call, got %+v", events.identifies)
	}
	if len(events.events) != 1 || events.events[0].event != "user_logged_in" {
		t.Fatalf("expected user_logged_in capture, got %+v", events.events)
	}
}

func TestCallbackExchangeFailure(t *testing.T) {
	stub := &authenticatorStub{exchangeErr: errors.New("provider said no")}
	handler := NewAuthHandler(stub, newTestRenderer(t), nil, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=stale", nil))

	if !strings.Contains(rec.Body.String(), "Failed to exchange") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie may be set when the exchange fails")
	}
}

func TestCallbackAnalyticsFailureDoesNotBlockLogin(t *testing.T) {
	stub := &authenticatorStub{
		token:    "access-token-1",
		identity: auth.Identity{Subject: "auth0|alice"},
	}
	events := &capturerStub{err: errors.New("collector down")}
	handler := NewAuthHandler(stub, newTestRenderer(t), events, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=the-code", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("analytics failure must not block login, got %d", rec.Code)
	}
}

func TestLogoutClearsCookieAndRedirects(t *testing.T) {
	stub := &authenticatorStub{logoutURL: "https://tenant.example-idp.com/v2/logout"}
	handler := NewAuthHandler(stub, newTestRenderer(t), nil, "development", discardLogger())

	rec := httptest.NewRecorder()
	handler.Logout(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != stub.logoutURL {
		t.Fatalf("redirect location = %q", got)
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatalf("auth cookie not cleared: %+v", cleared)
	}
}
