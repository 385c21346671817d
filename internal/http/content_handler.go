package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"fieldpal/internal/content"
)

// ContentHandler exposes the page content API.
type ContentHandler struct {
	store  *content.Store
	events EventCapturer
	logger *slog.Logger
}

// NewContentHandler creates a handler.
func NewContentHandler(store *content.Store, events EventCapturer, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{store: store, events: events, logger: logger}
}

func pageParam(r *http.Request) (string, bool) {
	page := strings.TrimSpace(chi.URLParam(r, "page"))
	if page == "" || strings.ContainsAny(page, "/\\") || strings.Contains(page, "..") {
		return "", false
	}
	return page, true
}

// Get returns a page's document, or just one section when ?section= is
// present. A missing document yields the default skeleton, never a 404.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid page name")
		return
	}

	var (
		doc content.Document
		err error
	)
	if section := strings.TrimSpace(r.URL.Query().Get("section")); section != "" {
		doc, err = h.store.GetSection(r.Context(), page, section)
	} else {
		doc, err = h.store.Get(r.Context(), page)
	}
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Update replaces a page's document, or merges a single section when
// ?section= is present. Requires an allow-listed identity.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid page name")
		return
	}

	section := strings.TrimSpace(r.URL.Query().Get("section"))

	var err error
	if section != "" {
		var value json.RawMessage
		if decodeErr := decodeJSONBody(w, r, &value); decodeErr != nil {
			writeJSONError(w, decodeErr)
			return
		}
		err = h.store.SaveSection(r.Context(), page, section, value)
	} else {
		var doc content.Document
		if decodeErr := decodeJSONBody(w, r, &doc); decodeErr != nil {
			writeJSONError(w, decodeErr)
			return
		}
		err = h.store.Save(r.Context(), page, doc)
	}
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	h.captureUpdate(r, page, section)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *ContentHandler) captureUpdate(r *http.Request, page, section string) {
	if h.events == nil {
		return
	}
	identity, _ := IdentityFromContext(r.Context())
	properties := map[string]any{
		"page":  page,
		"email": identity.Email,
	}
	if section != "" {
		properties["section"] = section
	}
	if err := h.events.Capture(r.Context(), identity.StableID(), "content_updated", properties); err != nil {
		h.logger.Warn("content update capture failed", "error", err)
	}
}
