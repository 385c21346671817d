package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config aggregates runtime configuration for the FieldPal site.
type Config struct {
	Environment    string
	HTTPPort       int
	LogLevel       string
	AllowedOrigins []string

	// Identity provider (Auth0-style).
	Auth0Domain       string
	Auth0Audience     string
	Auth0ClientID     string
	Auth0ClientSecret string
	Auth0CallbackURL  string

	// Admin allow-list of provider-issued user ids.
	AdminUserIDs []string

	// Storage.
	DataStore   string
	DatabaseURL string

	// Contact notifications.
	SendGridAPIKey     string
	SendGridFromEmail  string
	ContactNotifyEmail string

	// Analytics.
	PostHogProjectAPIKey string
	PostHogHost          string

	// Base URL prefixed to blob keys to form public asset URLs. Empty
	// means assets are served by this process under /assets/.
	AssetBaseURL string
}

// Load builds a Config from the resolver with sensible defaults for local
// development.
func Load(r *Resolver) (Config, error) {
	cfg := Config{
		Environment:    getOr(r, "APP_ENV", "development"),
		LogLevel:       strings.ToLower(getOr(r, "LOG_LEVEL", "info")),
		AllowedOrigins: parseCSV(getOr(r, "ALLOWED_ORIGINS", "*")),

		Auth0Domain:       normalizeDomain(r.Get("AUTH0_DOMAIN")),
		Auth0Audience:     r.Get("AUTH0_AUDIENCE"),
		Auth0ClientID:     r.Get("AUTH0_CLIENT_ID"),
		Auth0ClientSecret: r.Get("AUTH0_CLIENT_SECRET"),
		Auth0CallbackURL:  r.Get("AUTH0_CALLBACK_URL"),

		AdminUserIDs: parseCSV(r.Get("ADMIN_USER_IDS")),

		DataStore:   strings.ToLower(getOr(r, "DATA_STORE", "memory")),
		DatabaseURL: r.Get("DATABASE_URL"),

		SendGridAPIKey:     r.Get("SENDGRID_API_KEY"),
		SendGridFromEmail:  r.Get("SENDGRID_FROM_EMAIL"),
		ContactNotifyEmail: r.Get("CONTACT_NOTIFY_EMAIL"),

		PostHogProjectAPIKey: r.Get("POSTHOG_PROJECT_API_KEY"),
		PostHogHost:          r.Get("POSTHOG_HOST"),

		AssetBaseURL: strings.TrimRight(r.Get("ASSET_BASE_URL"), "/"),
	}

	portValue := getOr(r, "PORT", getOr(r, "HTTP_PORT", "8003"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory backends should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// Auth0Configured reports whether the identity provider settings needed
// for token verification are present.
func (c Config) Auth0Configured() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

func getOr(r *Resolver, key, fallback string) string {
	if value := r.Get(key); value != "" {
		return value
	}
	return fallback
}

// normalizeDomain strips any scheme and surrounding slashes so the domain
// can be embedded into provider URLs uniformly.
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.Trim(domain, "/")
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
