package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"fieldpal/internal/storage"
)

// AssetHandler serves uploaded image blobs over HTTP. Only keys under
// images/ are reachable; everything else in the store stays private.
type AssetHandler struct {
	blobs  storage.Store
	logger *slog.Logger
}

// NewAssetHandler creates a handler.
func NewAssetHandler(blobs storage.Store, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{blobs: blobs, logger: logger}
}

// Serve streams the blob named by the wildcard path segment.
func (h *AssetHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !strings.HasPrefix(key, "images/") || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}

	data, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("serve asset", "key", key, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	contentType := "application/octet-stream"
	if obj, statErr := h.blobs.Stat(r.Context(), key); statErr == nil && obj.ContentType != "" {
		contentType = obj.ContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}
