package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort   int
	SQLiteDSN  string
	SessionTTL time.Duration
	// AdminEmail registers with the admin role on first signup.
	AdminEmail string
	// AllowedOrigins configures CORS for browser clients. Empty disables CORS.
	AllowedOrigins []string
	// LoginRatePerMinute caps login attempts per client. Zero disables the limiter.
	LoginRatePerMinute int
	LogLevel           string
}

// Load parses configuration values from a .env file (when present) and the
// current process environment. Environment variables win over .env entries.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for bad entries.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:booking.db?_foreign_keys=on",
		SessionTTL:         24 * time.Hour,
		LoginRatePerMinute: 10,
		LogLevel:           "info",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if adminEmail := strings.TrimSpace(os.Getenv("BOOKING_ADMIN_EMAIL")); adminEmail == "" {
		missing = append(missing, "BOOKING_ADMIN_EMAIL")
	} else {
		cfg.AdminEmail = adminEmail
	}

	if origins := strings.TrimSpace(os.Getenv("BOOKING_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("BOOKING_LOGIN_RATE_PER_MINUTE")); rateValue != "" {
		rate, err := strconv.Atoi(rateValue)
		if err != nil || rate < 0 {
			invalid = append(invalid, "BOOKING_LOGIN_RATE_PER_MINUTE")
		} else {
			cfg.LoginRatePerMinute = rate
		}
	}

	if level := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
