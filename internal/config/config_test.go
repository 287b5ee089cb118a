package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPPort != "8000" || cfg.GRPCPort != "50051" {
		t.Errorf("unexpected ports: %s %s", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h ttl, got %v", cfg.TokenTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadServerConfig_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadServerConfig(); err == nil {
		t.Error("expected error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	if _, err := LoadServerConfig(); err == nil {
		t.Error("expected error with admin email but no password")
	}

	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("TOKEN_TTL", "soon")
	if _, err := LoadServerConfig(); err == nil {
		t.Error("expected error for bad TOKEN_TTL")
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("SWEETSHOP_PAGE_SIZE", "9")
	t.Setenv("SWEETSHOP_CLEAR_ON_FAILURE", "true")
	t.Setenv("SWEETSHOP_SESSION_FILE", "/tmp/s.yaml")

	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.PageSize != 9 || !cfg.ClearOnFailure {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.APIURL != "http://127.0.0.1:8000" || cfg.Profile != "default" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("SWEETSHOP_PAGE_SIZE", "0")
	if _, err := LoadClientConfig(); err == nil {
		t.Error("expected error for page size 0")
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SWEETSHOP_TEST_KEY=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SWEETSHOP_TEST_KEY", "")
	os.Unsetenv("SWEETSHOP_TEST_KEY")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := os.Getenv("SWEETSHOP_TEST_KEY"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}
}
