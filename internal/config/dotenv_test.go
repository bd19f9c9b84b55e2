package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("SITE_URL", "")
	t.Setenv("ADMIN_TOKEN", "")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := []byte(`
# local development settings

DB_PATH=quoter.db
export SITE_URL=http://localhost:8080
ADMIN_TOKEN="s3cret"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("DB_PATH"); got != "quoter.db" {
		t.Fatalf("DB_PATH=%q, want %q", got, "quoter.db")
	}
	if got := os.Getenv("SITE_URL"); got != "http://localhost:8080" {
		t.Fatalf("SITE_URL=%q, want %q", got, "http://localhost:8080")
	}
	if got := os.Getenv("ADMIN_TOKEN"); got != "s3cret" {
		t.Fatalf("ADMIN_TOKEN=%q, want %q", got, "s3cret")
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=8080\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("PORT"); got != "9090" {
		t.Fatalf("PORT=%q, want the pre-set %q", got, "9090")
	}
}

func TestLoadDotEnv_StripsSingleQuotes(t *testing.T) {
	t.Setenv("SITE_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SITE_URL='http://shop.local'\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("SITE_URL"); got != "http://shop.local" {
		t.Fatalf("SITE_URL=%q, want %q", got, "http://shop.local")
	}
}
