package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"fieldpal/internal/auth"
	"fieldpal/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func newRequestMiddleware(logger *slog.Logger, recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			if recorder != nil {
				recorder.RecordRequest(r.Method, route, rec.status, duration)
			}
			logger.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", duration.String())
		})
	}
}

func newSecurityHeadersMiddleware(environment string) func(http.Handler) http.Handler {
	isDev := strings.EqualFold(environment, "development")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")

			if !isDev {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// IdentityFromContext extracts the verified identity placed there by
// the auth middleware. The second return is false on anonymous
// requests.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(auth.Identity)
	return identity, ok
}

// TokenVerifier verifies a bearer token into an identity. Satisfied by
// auth.Verifier; handlers take the interface so tests can stub it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// newRequireAuthMiddleware rejects requests without a verifiable token.
// The token comes from the Authorization header or the auth cookie.
func newRequireAuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// newRequireAdminMiddleware enforces the allow-list. It must run after
// the auth middleware.
func newRequireAdminMiddleware(gate *auth.Gate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if err := gate.Authorize(identity); err != nil {
				handleServiceError(w, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EventCapturer is the analytics sink shared by the page-view
// middleware and the handlers. Satisfied by analytics.Client.
type EventCapturer interface {
	Capture(ctx context.Context, distinctID, event string, properties map[string]any) error
}

// EventIdentifier additionally associates profile properties with a
// distinct id, used on login.
type EventIdentifier interface {
	EventCapturer
	Identify(ctx context.Context, distinctID string, properties map[string]any) error
}

// analyticsCookieName carries the visitor's distinct id. Readable by
// the front-end scripts, so not http-only.
const analyticsCookieName = "analytics_id"

const analyticsCookieMaxAge = 365 * 24 * 60 * 60

// skipTracking excludes non-page traffic from page-view events.
func skipTracking(path string) bool {
	for _, prefix := range []string{"/static", "/assets", "/api", "/admin", "/auth"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return path == "/health" || path == "/metrics" || path == "/favicon.ico"
}

// pageLabel derives the page-view metric label from the request path.
// The root path counts as "home".
func pageLabel(path string) string {
	page := strings.TrimPrefix(path, "/")
	if page == "" {
		return "home"
	}
	return page
}

// newPageViewMiddleware assigns each visitor a stable analytics id and
// records a page_viewed event. Tracking runs synchronously but its
// failures never affect the response.
func newPageViewMiddleware(events EventCapturer, recorder metrics.Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipTracking(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			distinctID := ""
			if cookie, err := r.Cookie(analyticsCookieName); err == nil && cookie.Value != "" {
				distinctID = cookie.Value
			}
			if distinctID == "" {
				distinctID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     analyticsCookieName,
					Value:    distinctID,
					Path:     "/",
					MaxAge:   analyticsCookieMaxAge,
					HttpOnly: false,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if recorder != nil {
				recorder.RecordPageView(pageLabel(r.URL.Path))
			}
			if events != nil {
				err := events.Capture(r.Context(), distinctID, "page_viewed", map[string]any{
					"path":       r.URL.Path,
					"method":     r.Method,
					"user_agent": r.UserAgent(),
				})
				if err != nil {
					logger.Warn("page view capture failed", "error", err)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ipLimiter rate-limits by client IP with a token bucket per address.
// Stale entries are evicted opportunistically on lookup.
type ipLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*ipEntry
}

type ipEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*ipEntry),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	const ttl = 10 * time.Minute

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.limiters) > 1024 {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastAccess) > ttl {
				delete(l.limiters, key)
			}
		}
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = now
	return entry.limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// newRateLimitMiddleware applies a per-IP token bucket and answers 429
// when exhausted.
func newRateLimitMiddleware(limiter *ipLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
