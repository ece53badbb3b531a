package prompts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltinDefault(t *testing.T) {
	got, err := Load("", "/nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != ExtractionUserPrompt {
		t.Error("empty name must return the built-in prompt")
	}
}

func TestLoadNamedPrompt(t *testing.T) {
	dir := t.TempDir()
	content := "Extract only financial claims.\n"
	if err := os.WriteFile(filepath.Join(dir, "financial.md"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	for _, name := range []string{"financial", "financial.md"} {
		got, err := Load(name, dir)
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", name, err)
		}
		if got != "Extract only financial claims." {
			t.Errorf("Load(%q) = %q, want trimmed file content", name, got)
		}
	}
}

func TestLoadAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.md")
	if err := os.WriteFile(path, []byte("custom prompt"), 0644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}

	got, err := Load(path, "/ignored")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "custom prompt" {
		t.Errorf("Load = %q, want custom prompt", got)
	}
}

func TestLoadMissingPrompt(t *testing.T) {
	if _, err := Load("missing", t.TempDir()); err == nil {
		t.Fatal("expected an error for a missing prompt file")
	}
}
