package http

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"fieldpal/internal/auth"
	"fieldpal/internal/content"
	"fieldpal/internal/web"
)

// PageHandler renders the public pages and the admin HTML shell.
type PageHandler struct {
	store          *content.Store
	renderer       *web.Renderer
	verifier       TokenVerifier
	gate           *auth.Gate
	authConfigured bool
	events         EventCapturer
	logger         *slog.Logger
}

// NewPageHandler creates a handler.
func NewPageHandler(store *content.Store, renderer *web.Renderer, verifier TokenVerifier, gate *auth.Gate, authConfigured bool, events EventCapturer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		store:          store,
		renderer:       renderer,
		verifier:       verifier,
		gate:           gate,
		authConfigured: authConfigured,
		events:         events,
		logger:         logger,
	}
}

// pageData flattens a stored document into template data. Values that
// fail to decode are dropped rather than failing the render.
func pageData(page string, doc content.Document) web.Page {
	data := web.Page{Content: make(map[string]any, len(doc))}
	for key, raw := range doc {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		data.Content[key] = value
	}
	if title, ok := data.Content["title"].(string); ok && title != "" {
		data.Title = title
	} else {
		data.Title = page
	}
	return data
}

func (h *PageHandler) renderPublic(w http.ResponseWriter, r *http.Request, page, template string) {
	doc, err := h.store.Get(r.Context(), page)
	if err != nil {
		// Content storage being down should not take the page down.
		h.logger.Error("load page content", "page", page, "error", err)
		doc = content.Document{}
	}
	if err := h.renderer.Render(w, http.StatusOK, template, pageData(page, doc)); err != nil {
		h.logger.Error("render page", "page", page, "error", err)
	}
}

// Home renders the landing page.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderPublic(w, r, "home", "home.html")
}

// About renders the about page.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderPublic(w, r, "about", "about.html")
}

// Contact renders the contact page.
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderPublic(w, r, "contact", "contact.html")
}

// adminUser resolves the browser session for admin pages. Anonymous or
// unverifiable sessions redirect to login; a verified identity off the
// allow-list gets the 403 page. The bool reports whether the caller
// may proceed.
func (h *PageHandler) adminUser(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	if !h.authConfigured {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return auth.Identity{}, false
	}

	token := auth.TokenFromRequest(r)
	if token == "" {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return auth.Identity{}, false
	}

	identity, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		h.logger.Warn("admin session rejected", "error", err)
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return auth.Identity{}, false
	}

	if err := h.gate.Authorize(identity); err != nil {
		renderErr := h.renderer.Render(w, http.StatusForbidden, "forbidden.html", web.Page{
			Title: "Not authorized",
			User:  web.User{ID: identity.StableID(), Email: identity.Email},
		})
		if renderErr != nil {
			h.logger.Error("render forbidden page", "error", renderErr)
		}
		return auth.Identity{}, false
	}

	return identity, true
}

func (h *PageHandler) renderAdmin(w http.ResponseWriter, identity auth.Identity, title, template string) {
	err := h.renderer.Render(w, http.StatusOK, template, web.Page{
		Title: title,
		User:  web.User{ID: identity.StableID(), Email: identity.Email},
	})
	if err != nil {
		h.logger.Error("render admin page", "template", template, "error", err)
	}
}

// AdminDashboard renders the admin landing page.
func (h *PageHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.adminUser(w, r)
	if !ok {
		return
	}

	if h.events != nil {
		err := h.events.Capture(r.Context(), identity.StableID(), "admin_dashboard_viewed", map[string]any{
			"email": identity.Email,
		})
		if err != nil {
			h.logger.Warn("dashboard view capture failed", "error", err)
		}
	}

	h.renderAdmin(w, identity, "Dashboard", "admin_dashboard.html")
}

// AdminContent renders the content editor shell.
func (h *PageHandler) AdminContent(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.adminUser(w, r)
	if !ok {
		return
	}
	h.renderAdmin(w, identity, "Content", "admin_content.html")
}

// AdminImages renders the image library shell.
func (h *PageHandler) AdminImages(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.adminUser(w, r)
	if !ok {
		return
	}
	h.renderAdmin(w, identity, "Images", "admin_images.html")
}

// NotFound renders the 404 page for unmatched browser routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, http.StatusNotFound, "notfound.html", web.Page{Title: "Not found"}); err != nil {
		h.logger.Error("render not found page", "error", err)
	}
}
