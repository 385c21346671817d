package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"fieldpal/internal/images"
)

const maxImageUploadBytes int64 = 10 << 20 // 10 MiB

// ImageHandler exposes the admin image library.
type ImageHandler struct {
	service *images.Service
	events  EventCapturer
	logger  *slog.Logger
}

// NewImageHandler creates a handler.
func NewImageHandler(service *images.Service, events EventCapturer, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{service: service, events: events, logger: logger}
}

// Upload stores a multipart image file and returns its public URL.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload is too large (max %d bytes)", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, err := h.service.Upload(r.Context(), header.Filename, data, contentType)
	if err != nil {
		if errors.Is(err, images.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		handleServiceError(w, err, h.logger)
		return
	}

	h.capture(r, "image_uploaded", map[string]any{
		"filename":     header.Filename,
		"content_type": contentType,
		"size":         len(data),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "url": url})
}

// List returns every stored image with its public URL.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": list})
}

// Delete removes a stored image.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))

	err := h.service.Delete(r.Context(), name)
	if err != nil {
		if errors.Is(err, images.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, images.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		handleServiceError(w, err, h.logger)
		return
	}

	h.capture(r, "image_deleted", map[string]any{"image_name": name})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *ImageHandler) capture(r *http.Request, event string, properties map[string]any) {
	if h.events == nil {
		return
	}
	identity, _ := IdentityFromContext(r.Context())
	properties["email"] = identity.Email
	if err := h.events.Capture(r.Context(), identity.StableID(), event, properties); err != nil {
		h.logger.Warn("image event capture failed", "event", event, "error", err)
	}
}
