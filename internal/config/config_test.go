package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Security.TokenTTL != 24*time.Hour {
		t.Errorf("expected default token ttl 24h, got %v", cfg.Security.TokenTTL)
	}
	if cfg.Kafka.CreatedTopic != "order.created" || cfg.Kafka.CancelledTopic != "order.cancelled" {
		t.Errorf("unexpected default topics: %+v", cfg.Kafka)
	}
	if cfg.Uploads.Dir != "uploads" {
		t.Errorf("expected default uploads dir, got %q", cfg.Uploads.Dir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EASYSHOP_SERVER_PORT", "9999")
	t.Setenv("EASYSHOP_DATABASE_URL", "postgres://localhost:5432/easyshop?sslmode=disable")
	t.Setenv("EASYSHOP_SECURITY_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("EASYSHOP_SECURITY_TOKEN_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("expected port override, got %q", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://localhost:5432/easyshop?sslmode=disable" {
		t.Errorf("unexpected database url: %q", cfg.Database.URL)
	}
	if cfg.Security.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h token ttl, got %v", cfg.Security.TokenTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"complete", func(c *Config) {}, false},
		{"missing database url", func(c *Config) { c.Database.URL = "" }, true},
		{"missing jwt secret", func(c *Config) { c.Security.JWTSecret = "" }, true},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "too-short" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Database.URL = "postgres://localhost/easyshop"
			cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
