package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"fieldpal/internal/analytics"
	"fieldpal/internal/auth"
	"fieldpal/internal/config"
	"fieldpal/internal/contact"
	"fieldpal/internal/content"
	"fieldpal/internal/email"
	transporthttp "fieldpal/internal/http"
	"fieldpal/internal/images"
	"fieldpal/internal/metrics"
	"fieldpal/internal/platform/database"
	"fieldpal/internal/platform/logging"
	"fieldpal/internal/platform/migrate"
	"fieldpal/internal/storage"
	"fieldpal/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := config.NewResolver("pulumi")
	cfg, err := config.Load(resolver)
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	blobs, contactRepo, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	outboundClient := &http.Client{Timeout: 12 * time.Second}

	var events transporthttp.EventIdentifier
	posthog := analytics.NewClient(outboundClient, cfg.PostHogProjectAPIKey, analytics.WithHost(cfg.PostHogHost))
	if posthog.Enabled() {
		events = posthog
	} else {
		logger.Warn("analytics disabled; POSTHOG_PROJECT_API_KEY is not set")
	}

	var notifier contact.Notifier
	sendgrid := email.NewClient(outboundClient, cfg.SendGridAPIKey, cfg.SendGridFromEmail)
	if sendgrid.Enabled() {
		notifier = sendgrid
	} else {
		logger.Warn("contact notifications disabled; SENDGRID_API_KEY is not set")
	}

	if !cfg.Auth0Configured() {
		logger.Warn("identity provider not configured; admin routes will redirect to the login error page")
	}

	contentStore := content.NewStore(blobs)
	if cfg.UseInMemoryStore() {
		seedContent(ctx, contentStore, logger)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	router := transporthttp.NewRouter(transporthttp.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Renderer:      renderer,
		Content:       contentStore,
		Images:        images.NewService(blobs, cfg.AssetBaseURL),
		Contact:       contact.NewService(contactRepo, notifier, events, collector, cfg.ContactNotifyEmail, logger),
		Blobs:         blobs,
		Verifier:      auth.NewVerifier(cfg.Auth0Domain, cfg.Auth0Audience, outboundClient),
		Gate:          auth.NewGate(cfg.AdminUserIDs),
		Authenticator: auth.NewAuthenticator(cfg.Auth0Domain, cfg.Auth0Audience, cfg.Auth0ClientID, cfg.Auth0ClientSecret, cfg.Auth0CallbackURL),
		Events:        events,
		Metrics:       collector,
		Gatherer:      registry,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("FieldPal site listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, contact.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory storage")
		return storage.NewMemoryStore(), contact.NewInMemoryRepository(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	logger.Info("connected to postgres")
	return storage.NewPostgresStore(db), contact.NewPostgresRepository(db), cleanup, nil
}
