package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
auth:
  secret: from-file
  admin_code: file-code
quiz:
  ttl: 2m
cors:
  allowed_origins: ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Fatalf("expected env secret, got %q", cfg.Auth.Secret)
	}
	if cfg.Auth.AdminCode != "file-code" {
		t.Fatalf("expected file admin code, got %q", cfg.Auth.AdminCode)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Fatalf("expected one origin, got %v", cfg.CORS.AllowedOrigins)
	}
	if got := TTLDuration(cfg.Quiz.TTL, time.Minute); got != 2*time.Minute {
		t.Fatalf("expected 2m, got %s", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("expected fallback for garbage, got %s", got)
	}
}
