package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"

	"fieldpal/internal/images"
	"fieldpal/internal/storage"
)

func newImageRouter(handler *ImageHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/images/upload", handler.Upload)
	r.Get("/api/images", handler.List)
	r.Delete("/api/images/{name}", handler.Delete)
	return r
}

func newMultipartImageRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create multipart part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write multipart data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImageUpload(t *testing.T) {
	blobs := storage.NewMemoryStore()
	events := &capturerStub{}
	handler := NewImageHandler(images.NewService(blobs, ""), events, discardLogger())

	payload := []byte{0x89, 'P', 'N', 'G'}
	req := newMultipartImageRequest(t, "logo.png", "image/png", payload)
	rec := httptest.NewRecorder()
	newImageRouter(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response should decode: %v", err)
	}
	if body["url"] != "/assets/images/logo.png" {
		t.Fatalf("unexpected url %q", body["url"])
	}

	stored, err := blobs.Get(context.Background(), "images/logo.png")
	if err != nil {
		t.Fatalf("blob not stored: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatal("stored payload mismatch")
	}

	if len(events.events) != 1 || events.events[0].event != "image_uploaded" {
		t.Fatalf("expected image_uploaded capture, got %+v", events.events)
	}
}

func TestImageUploadRejectsBadNames(t *testing.T) {
	handler := NewImageHandler(images.NewService(storage.NewMemoryStore(), ""), nil, discardLogger())

	req := newMultipartImageRequest(t, "../escape.png", "image/png", []byte("x"))
	rec := httptest.NewRecorder()
	newImageRouter(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestImageUploadRequiresFile(t *testing.T) {
	handler := NewImageHandler(images.NewService(storage.NewMemoryStore(), ""), nil, discardLogger())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newImageRouter(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestImageList(t *testing.T) {
	blobs := storage.NewMemoryStore()
	service := images.NewService(blobs, "https://cdn.fieldpal.ai")
	if _, err := service.Upload(context.Background(), "a.png", []byte("a"), "image/png"); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	if _, err := service.Upload(context.Background(), "b.jpg", []byte("bb"), "image/jpeg"); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	handler := NewImageHandler(service, nil, discardLogger())

	rec := httptest.NewRecorder()
	newImageRouter(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body struct {
		Images []images.Image `json:"images"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response should decode: %v", err)
	}
	if len(body.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(body.Images))
	}
	if body.Images[0].URL != "https://cdn.fieldpal.ai/images/a.png" {
		t.Fatalf("unexpected url %q", body.Images[0].URL)
	}
}

func TestImageDelete(t *testing.T) {
	blobs := storage.NewMemoryStore()
	service := images.NewService(blobs, "")
	if _, err := service.Upload(context.Background(), "gone.png", []byte("x"), "image/png"); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	events := &capturerStub{}
	handler := NewImageHandler(service, events, discardLogger())
	router := newImageRouter(handler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/images/gone.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := blobs.Get(context.Background(), "images/gone.png"); err == nil {
		t.Fatal("blob should be gone")
	}
	if len(events.events) != 1 || events.events[0].event != "image_deleted" {
		t.Fatalf("expected image_deleted capture, got %+v", events.events)
	}

	// Deleting again is a 404.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/images/gone.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
