package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"fieldpal/internal/auth"
	"fieldpal/internal/config"
	"fieldpal/internal/contact"
	"fieldpal/internal/content"
	"fieldpal/internal/images"
	"fieldpal/internal/metrics"
	"fieldpal/internal/storage"
	"fieldpal/internal/web"
)

// Dependencies carries everything the router wires together. Events,
// Metrics and Gatherer may be nil when the corresponding provider is
// not configured.
type Dependencies struct {
	Config        config.Config
	Logger        *slog.Logger
	Renderer      *web.Renderer
	Content       *content.Store
	Images        *images.Service
	Contact       *contact.Service
	Blobs         storage.Store
	Verifier      TokenVerifier
	Gate          *auth.Gate
	Authenticator Authenticator
	Events        EventIdentifier
	Metrics       metrics.Recorder
	Gatherer      prometheus.Gatherer
}

// NewRouter wires application routes and middleware using chi.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newRequestMiddleware(logger, deps.Metrics))
	r.Use(newPageViewMiddleware(deps.Events, deps.Metrics, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	pageHandler := NewPageHandler(deps.Content, deps.Renderer, deps.Verifier, deps.Gate, cfg.Auth0Configured(), deps.Events, logger)
	authHandler := NewAuthHandler(deps.Authenticator, deps.Renderer, deps.Events, cfg.Environment, logger)
	contentHandler := NewContentHandler(deps.Content, deps.Events, logger)
	imageHandler := NewImageHandler(deps.Images, deps.Events, logger)
	contactHandler := NewContactHandler(deps.Contact, logger)
	assetHandler := NewAssetHandler(deps.Blobs, logger)

	if len(cfg.AdminUserIDs) == 0 {
		logger.Warn("admin allow-list is empty; no identity can use the admin API")
	}

	r.Get("/", pageHandler.Home)
	r.Get("/about", pageHandler.About)
	r.Get("/contact", pageHandler.Contact)

	submitLimiter := newIPLimiter(rate.Limit(5.0/60.0), 5)
	r.With(newRateLimitMiddleware(submitLimiter)).Post("/contact/submit", contactHandler.Submit)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Get("/logout", authHandler.Logout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", pageHandler.AdminDashboard)
		r.Get("/content", pageHandler.AdminContent)
		r.Get("/images", pageHandler.AdminImages)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/content/{page}", contentHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(newRequireAuthMiddleware(deps.Verifier, logger))
			r.Use(newRequireAdminMiddleware(deps.Gate, logger))

			r.Put("/content/{page}", contentHandler.Update)
			r.Post("/images/upload", imageHandler.Upload)
			r.Get("/images", imageHandler.List)
			r.Delete("/images/{name}", imageHandler.Delete)
			r.Get("/contact/submissions", contactHandler.List)
		})
	})

	r.Get("/assets/*", assetHandler.Serve)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	r.NotFound(pageHandler.NotFound)

	return r
}
