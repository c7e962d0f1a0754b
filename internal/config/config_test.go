package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"QPAPER_CONFIG", "QPAPER_API_URL", "QPAPER_API_TIMEOUT", "QPAPER_LOG_FILE", "QPAPER_LOG_LEVEL", "QPAPER_DB"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if want := filepath.Join(dir, "data", "qpaper", "qpaper.log"); cfg.Log.Path != want {
		t.Errorf("Log.Path = %q, want %q", cfg.Log.Path, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", "qpaper", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	doc := `
api:
  base_url: https://exams.internal
  timeout: 5m
  retry:
    max_attempts: 5
log:
  level: debug
db_path: /tmp/qpaper-test.db
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://exams.internal" || cfg.API.Timeout != 5*time.Minute {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.API.Retry.MaxAttempts != 5 || cfg.API.Retry.Multiplier != 2.0 {
		t.Errorf("Retry = %+v, want file value merged over defaults", cfg.API.Retry)
	}
	if cfg.Log.Level != "debug" || cfg.DBPath != "/tmp/qpaper-test.db" {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("QPAPER_API_URL", "http://override:9000")
	t.Setenv("QPAPER_LOG_LEVEL", "error")
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://override:9000" || cfg.Log.Level != "error" {
		t.Errorf("env did not override file: %+v", cfg)
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("api: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "chatty"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestResolveDBPath(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	p, err := cfg.ResolveDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "qpaper", "qpaper.db"); p != want {
		t.Errorf("default db = %q, want %q", p, want)
	}

	cfg.DBPath = filepath.Join(dir, "elsewhere", "events.db")
	p, err = cfg.ResolveDBPath()
	if err != nil || p != cfg.DBPath {
		t.Errorf("explicit db = %q, %v", p, err)
	}
}
