// internal/config/config.go
//
// Runtime configuration for the game server, read from environment variables.
// main loads a .env file (godotenv) before calling Load, so both sources work.
//
// Environment variables:
//   SECRET_KEY       session signing key (default "change_this_in_prod")
//   HOST, PORT       listen address (default 0.0.0.0:8000)
//   APP_ENV          "production" enables Secure cookies
//   LOG_LEVEL        zerolog level (default info)
//   SESSION_BACKEND  "cookie" | "memory" (default cookie)
//   SESSION_COOKIE   cookie name (default guess_session)
//   SESSION_TTL      session lifetime (default 744h)
//   REQUEST_TIMEOUT  handler timeout (default 10s)

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// DefaultSecretKey is the development fallback; it is refused in production.
const DefaultSecretKey = "change_this_in_prod"

// Session backends.
const (
	BackendCookie = "cookie"
	BackendMemory = "memory"
)

// Config is constructed once at startup and passed to the HTTP layer.
type Config struct {
	Addr           string
	SecretKey      string
	Production     bool
	LogLevel       string
	SessionBackend string
	CookieName     string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

// UsingDefaultSecret reports whether SECRET_KEY was left at its fallback.
func (c Config) UsingDefaultSecret() bool { return c.SecretKey == DefaultSecretKey }

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	port := getEnv("PORT", "8000")
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", port)
	}

	cfg := Config{
		Addr:           net.JoinHostPort(getEnv("HOST", "0.0.0.0"), port),
		SecretKey:      getEnv("SECRET_KEY", DefaultSecretKey),
		Production:     getEnv("APP_ENV", "development") == "production",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SessionBackend: getEnv("SESSION_BACKEND", BackendCookie),
		CookieName:     getEnv("SESSION_COOKIE", "guess_session"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 31*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	switch cfg.SessionBackend {
	case BackendCookie, BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if cfg.Production && cfg.UsingDefaultSecret() {
		return Config{}, errors.New("SECRET_KEY must be set in production")
	}
	return cfg, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", k)
	}
	return d, nil
}
