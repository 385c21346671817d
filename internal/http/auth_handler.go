package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"fieldpal/internal/auth"
	"fieldpal/internal/web"
)

// Authenticator drives the provider login flow. Satisfied by
// auth.Authenticator.
type Authenticator interface {
	LoginURL() (string, error)
	Exchange(ctx context.Context, code string) (string, auth.Identity, error)
	LogoutURL() string
}

// AuthHandler implements the browser login, callback and logout routes.
type AuthHandler struct {
	authenticator Authenticator
	renderer      *web.Renderer
	events        EventIdentifier
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates a handler. secureCookies should be true
// everywhere except local development.
func NewAuthHandler(authenticator Authenticator, renderer *web.Renderer, events EventIdentifier, environment string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		renderer:      renderer,
		events:        events,
		secureCookies: !strings.EqualFold(environment, "development"),
		logger:        logger,
	}
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, message string) {
	err := h.renderer.Render(w, http.StatusOK, "login_error.html", web.Page{
		Title: "Sign-in problem",
		Error: message,
	})
	if err != nil {
		h.logger.Error("render login error page", "error", err)
	}
}

// Login redirects the browser to the provider's authorization page. A
// missing provider configuration renders an explanatory page instead of
// failing with a raw 500.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	url, err := h.authenticator.LoginURL()
	if err != nil {
		if errors.Is(err, auth.ErrConfiguration) {
			h.renderLoginError(w, "Sign-in is not configured. Set the identity provider domain and client id in the stack outputs or environment.")
			return
		}
		h.logger.Error("build login url", "error", err)
		h.renderLoginError(w, "Sign-in is unavailable right now.")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback completes the authorization-code flow. A provider error or
// missing code renders the login-error page without attempting an
// exchange.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		h.renderLoginError(w, "Authentication error: "+providerErr)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.renderLoginError(w, "No authorization code received")
		return
	}

	token, identity, err := h.authenticator.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		h.renderLoginError(w, "Failed to exchange authorization code for a token.")
		return
	}

	h.captureLogin(r.Context(), identity)

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// captureLogin identifies the user and records the login. Best effort.
func (h *AuthHandler) captureLogin(ctx context.Context, identity auth.Identity) {
	if h.events == nil {
		return
	}
	distinctID := identity.StableID()
	if distinctID == "" {
		distinctID = "unknown"
	}
	if err := h.events.Identify(ctx, distinctID, map[string]any{"email": identity.Email}); err != nil {
		h.logger.Warn("login identify failed", "error", err)
	}
	if err := h.events.Capture(ctx, distinctID, "user_logged_in", map[string]any{"email": identity.Email}); err != nil {
		h.logger.Warn("login capture failed", "error", err)
	}
}

// Logout clears the auth cookie and redirects to the provider logout
// endpoint, or home when no provider is configured.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.authenticator.LogoutURL(), http.StatusFound)
}
