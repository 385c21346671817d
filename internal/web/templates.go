// Package web renders the site's server-side HTML from embedded
// templates.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every page template receives. Unused fields stay
// zero; templates guard optional sections with `with`.
type Page struct {
	Title   string
	Content map[string]any
	User    User
	Error   string
}

// User is the signed-in administrator shown on admin pages.
type User struct {
	ID    string
	Email string
}

// Renderer executes embedded page templates. Pages share the head and
// foot partials defined in layout.html.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates. It fails only when a
// template is malformed, which is a build-time mistake.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render executes the named template and writes it with the given
// status. The template runs into a buffer first so a mid-render
// failure never leaks a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
