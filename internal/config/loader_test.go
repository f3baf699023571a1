package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"BOOKING_HTTP_PORT",
			"BOOKING_SQLITE_DSN",
			"BOOKING_SESSION_TTL",
			"BOOKING_ALLOWED_ORIGINS",
			"BOOKING_LOGIN_RATE_PER_MINUTE",
			"BOOKING_LOG_LEVEL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		t.Setenv("BOOKING_ADMIN_EMAIL", "admin@example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:booking.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL of 24h, got %v", cfg.SessionTTL)
		}
		if cfg.AdminEmail != "admin@example.com" {
			t.Fatalf("expected admin email to be set, got %q", cfg.AdminEmail)
		}
		if cfg.LoginRatePerMinute != 10 {
			t.Fatalf("expected default login rate of 10, got %d", cfg.LoginRatePerMinute)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		if err := os.Unsetenv("BOOKING_ADMIN_EMAIL"); err != nil {
			t.Fatalf("failed to unset BOOKING_ADMIN_EMAIL: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "必須の環境変数が設定されていません: BOOKING_ADMIN_EMAIL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("BOOKING_ADMIN_EMAIL", "admin@example.com")
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_SESSION_TTL", "8h")
		t.Setenv("BOOKING_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
		t.Setenv("BOOKING_LOGIN_RATE_PER_MINUTE", "5")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Fatalf("expected session TTL of 8h, got %v", cfg.SessionTTL)
		}
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
		}
		if cfg.LoginRatePerMinute != 5 {
			t.Fatalf("expected login rate of 5, got %d", cfg.LoginRatePerMinute)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Setenv("BOOKING_ADMIN_EMAIL", "admin@example.com")
		t.Setenv("BOOKING_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid port")
		}
	})
}
