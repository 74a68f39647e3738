// Package config loads and validates process configuration from the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds validated environment configuration for the signaling server.
type Config struct {
	Port string

	GoEnv    string
	LogLevel string

	AllowedOrigins string

	PingInterval  time.Duration
	IdleTimeout   time.Duration
	RoomGCGrace   time.Duration
	RoomCap       int

	RedisEnabled bool
	RedisAddr    string

	RateLimitWsIP    string
	RateLimitAdminIP string

	OTELCollectorAddr string
}

// ValidateEnv reads and validates the environment variables and returns a
// Config. Every variable has a default, so an unset variable is never an
// error; an error is returned if any set variable is malformed.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errs []string

	cfg.Port = getEnvOrDefault("PORT", "8080")
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got %q)", cfg.Port))
	}

	cfg.GoEnv = getEnvOrDefault("GO_ENV", "development")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.AllowedOrigins = getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	cfg.PingInterval = durationSecondsOrDefault("PING_INTERVAL_SECONDS", 15, &errs)
	cfg.IdleTimeout = durationSecondsOrDefault("IDLE_TIMEOUT_SECONDS", 15, &errs)
	cfg.RoomGCGrace = durationSecondsOrDefault("ROOM_GC_GRACE_SECONDS", 60, &errs)

	roomCapStr := getEnvOrDefault("ROOM_CAP", "0")
	roomCap, err := strconv.Atoi(roomCapStr)
	if err != nil || roomCap < 0 {
		errs = append(errs, fmt.Sprintf("ROOM_CAP must be a non-negative integer (got %q)", roomCapStr))
	}
	cfg.RoomCap = roomCap

	cfg.RedisEnabled = os.Getenv("REDIS_ENABLED") == "true"
	if cfg.RedisEnabled {
		cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", "localhost:6379")
		if !isValidHostPort(cfg.RedisAddr) {
			errs = append(errs, fmt.Sprintf("REDIS_ADDR must be in format 'host:port' (got %q)", cfg.RedisAddr))
		}
	}

	cfg.RateLimitWsIP = getEnvOrDefault("RATE_LIMIT_WS_IP", "20-M")
	cfg.RateLimitAdminIP = getEnvOrDefault("RATE_LIMIT_ADMIN_IP", "60-M")

	cfg.OTELCollectorAddr = os.Getenv("OTEL_COLLECTOR_ADDR")

	if len(errs) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	logValidatedConfig(cfg)
	return cfg, nil
}

func durationSecondsOrDefault(key string, def int, errs *[]string) time.Duration {
	raw := getEnvOrDefault(key, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s must be a positive integer number of seconds (got %q)", key, raw))
		return time.Duration(def) * time.Second
	}
	return time.Duration(n) * time.Second
}

// isValidHostPort checks if a string is in the format "host:port".
func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return false
	}
	return parts[0] != ""
}

func logValidatedConfig(cfg *Config) {
	slog.Info("environment configuration validated",
		"port", cfg.Port,
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
		"ping_interval", cfg.PingInterval,
		"idle_timeout", cfg.IdleTimeout,
		"room_gc_grace", cfg.RoomGCGrace,
		"room_cap", cfg.RoomCap,
		"redis_enabled", cfg.RedisEnabled,
		"redis_addr", cfg.RedisAddr,
		"rate_limit_ws_ip", cfg.RateLimitWsIP,
		"rate_limit_admin_ip", cfg.RateLimitAdminIP,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
