package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database driver = %q, want sqlite default", cfg.Database.Driver)
	}
	if cfg.Storage.Type != "local" {
		t.Errorf("storage type = %q, want local default", cfg.Storage.Type)
	}
	if cfg.Upload.MaxSizeMB != 32 {
		t.Errorf("max upload = %d, want 32", cfg.Upload.MaxSizeMB)
	}
	if len(cfg.Upload.AllowedExtensions) != 1 || cfg.Upload.AllowedExtensions[0] != ".pdf" {
		t.Errorf("allowed extensions = %v, want [.pdf]", cfg.Upload.AllowedExtensions)
	}
	if cfg.Extraction.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Extraction.Workers)
	}
	if cfg.TrustAPI.IssuerID == "" {
		t.Error("expected a default issuer id")
	}
	if cfg.Publish.Cleanup != "archive" {
		t.Errorf("cleanup = %q, want archive default", cfg.Publish.Cleanup)
	}
}

func TestLoadRejectsBadCleanup(t *testing.T) {
	_, err := Load(writeConfig(t, "publish:\n  cleanup: shred\n"))
	if err == nil {
		t.Fatal("expected an error for an invalid cleanup policy")
	}
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{
		Driver:   "postgres",
		Host:     "db.internal",
		Port:     5432,
		User:     "claims",
		Password: "secret",
		Name:     "claims",
		SSLMode:  "require",
	}
	want := "host=db.internal port=5432 user=claims password=secret dbname=claims sslmode=require"
	if got := pg.DSN(); got != want {
		t.Errorf("postgres DSN = %q, want %q", got, want)
	}

	lite := DatabaseConfig{Driver: "sqlite", Path: "/var/data/claims.db"}
	if got := lite.DSN(); got != "/var/data/claims.db" {
		t.Errorf("sqlite DSN = %q, want the file path", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TRUSTAPI_EMAIL", "svc@linkedtrust.us")
	t.Setenv("EXTRACTION_API_KEY", "sk-test")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TrustAPI.Email != "svc@linkedtrust.us" {
		t.Errorf("trust email = %q, want env override", cfg.TrustAPI.Email)
	}
	if cfg.Extraction.APIKey != "sk-test" {
		t.Errorf("extraction api key = %q, want env override", cfg.Extraction.APIKey)
	}
}
