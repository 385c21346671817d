package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "content/home.json", []byte(`{"title":"Home"}`), "application/json"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	data, err := store.Get(ctx, "content/home.json")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != `{"title":"Home"}` {
		t.Fatalf("unexpected payload: %s", data)
	}

	obj, err := store.Stat(ctx, "content/home.json")
	if err != nil {
		t.Fatalf("Stat returned error: %v", err)
	}
	if obj.ContentType != "application/json" || obj.Size != int64(len(data)) {
		t.Fatalf("unexpected metadata: %+v", obj)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get(context.Background(), "content/absent.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreOverwriteByName(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "images/logo.png", []byte("v1"), "image/png"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put(ctx, "images/logo.png", []byte("v2-longer"), "image/png"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	data, err := store.Get(ctx, "images/logo.png")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "v2-longer" {
		t.Fatalf("expected overwrite, got %s", data)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Delete(ctx, "images/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing delete, got %v", err)
	}

	if err := store.Put(ctx, "images/a.png", []byte("a"), "image/png"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Delete(ctx, "images/a.png"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(ctx, "images/a.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected blob gone, got %v", err)
	}
}

func TestMemoryStoreListByPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"images/b.png", "images/a.png", "content/home.json"} {
		if err := store.Put(ctx, name, []byte("x"), "application/octet-stream"); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
	}

	objects, err := store.List(ctx, "images/")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 images, got %d", len(objects))
	}
	if objects[0].Name != "images/a.png" || objects[1].Name != "images/b.png" {
		t.Fatalf("expected sorted names, got %v", objects)
	}
}
