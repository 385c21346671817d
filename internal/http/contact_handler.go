package http

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/google/uuid"

	"fieldpal/internal/contact"
)

// ContactHandler accepts contact-form submissions and lists them for
// administrators.
type ContactHandler struct {
	service *contact.Service
	logger  *slog.Logger
}

// NewContactHandler creates a handler.
func NewContactHandler(service *contact.Service, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

// Submit stores a contact-form submission. Storage failure fails the
// request; the notification email and analytics side channels never do.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	distinctID := ""
	if cookie, err := r.Cookie(analyticsCookieName); err == nil && cookie.Value != "" {
		distinctID = cookie.Value
	}
	if distinctID == "" {
		distinctID = uuid.NewString()
	}

	_, err := h.service.Submit(r.Context(), contact.SubmitInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
		Message: payload.Message,
	}, distinctID)
	if err != nil {
		if errors.Is(err, contact.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("store contact submission", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store submission")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Thank you for your message. We'll get back to you soon!",
	})
}

// List returns stored submissions, newest first. Admin only.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.service.Submissions(r.Context())
	if err != nil {
		h.logger.Error("list contact submissions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": submissions})
}
