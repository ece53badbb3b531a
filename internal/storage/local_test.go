package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(&LocalConfig{
		Dir:       t.TempDir(),
		PublicURL: "http://localhost:8080/files/",
	})
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return store
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	content := "%PDF-1.4 fake"
	key := "documents/abc.pdf"

	if err := store.Upload(ctx, key, strings.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	exists, err := store.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("exists = %v, %v; want true", exists, err)
	}

	rc, err := store.Download(ctx, key)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}

	if got := store.GetURL(key); got != "http://localhost:8080/files/documents/abc.pdf" {
		t.Errorf("GetURL = %q", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	exists, _ = store.Exists(ctx, key)
	if exists {
		t.Error("object still exists after delete")
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"../outside.pdf", "/etc/passwd", "documents/../../outside.pdf"} {
		if err := store.Upload(ctx, key, strings.NewReader("x"), 1, ""); err == nil {
			t.Errorf("upload with key %q should be rejected", key)
		}
	}
}
