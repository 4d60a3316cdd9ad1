package config

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("GYM_API_BASE_URL", "http://gym.local/api/")
	t.Setenv("PAYMENT_POLL_INTERVAL", "500ms")
	t.Setenv("GYM_API_USERNAME", "svc")
	t.Setenv("GYM_API_PASSWORD", "svc-pass")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env, got %q", cfg.AppEnv)
	}
	if cfg.GymAPIURL != "http://gym.local/api" || !cfg.UsesRemoteAPI() {
		t.Fatalf("unexpected gym api url %q", cfg.GymAPIURL)
	}
	if cfg.PaymentPollInterval != 500*time.Millisecond {
		t.Fatalf("expected 500ms poll interval, got %s", cfg.PaymentPollInterval)
	}
	if cfg.GymAPIUser != "svc" || cfg.GymAPIPass != "svc-pass" {
		t.Fatalf("unexpected gym api credentials %q/%q", cfg.GymAPIUser, cfg.GymAPIPass)
	}
	if cfg.PaymentPollMaxAttempts != 60 || cfg.HTTPRetryDelay != 300*time.Millisecond {
		t.Fatalf("unexpected poll defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAYMENT_POLL_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
