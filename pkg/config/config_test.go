package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.API != want.API || cfg.Web != want.Web || cfg.Prefs != want.Prefs ||
		cfg.NATS != want.NATS || cfg.Neo4j != want.Neo4j || cfg.Log != want.Log {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	body := "api:\n  base_url: http://api.internal:9000\n  rate_limit: 5\n  burst: 2\nweb:\n  session_ttl: 5m\nprefs:\n  backend: nats\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CATALOG_WEB_ADDR", ":9999")
	t.Setenv("CATALOG_PREFS_BACKEND", "neo4j")

	cfg, err := Load(New(), file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://api.internal:9000" || cfg.API.RateLimit != 5 || cfg.API.Burst != 2 {
		t.Fatalf("api = %+v", cfg.API)
	}
	if cfg.Web.SessionTTL != 5*time.Minute {
		t.Fatalf("session ttl = %v", cfg.Web.SessionTTL)
	}
	if cfg.Web.Addr != ":9999" {
		t.Fatalf("env should override addr, got %q", cfg.Web.Addr)
	}
	if cfg.Prefs.Backend != BackendNeo4j {
		t.Fatalf("env should override the file, got %q", cfg.Prefs.Backend)
	}
}

func TestLoadDefaultFileFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Fatalf("level = %v", cfg.Log.SlogLevel())
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit file")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("CATALOG_API_BASE_URL", "not a url")
	t.Setenv("CATALOG_PREFS_BACKEND", "redis")
	t.Setenv("CATALOG_LOG_LEVEL", "loud")
	chdir(t, t.TempDir())

	_, err := Load(New(), "")
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, f := range []string{"api.base_url", "prefs.backend", "log.level"} {
		if !fields[f] {
			t.Errorf("missing validation error for %s in %v", f, verrs)
		}
	}
}
