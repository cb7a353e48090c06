// Package config provides configuration helpers for go-pointlight commands.
// Values come from environment variables with defaults; command-line flags
// override them in each command.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults used when the environment does not provide a value.
const (
	DefaultPort     = "8080"
	DefaultFPS      = 60.0
	DefaultLogLevel = "info"
)

// Port returns the HTTP port from POINTLIGHT_PORT or PORT.
func Port() string {
	if p := os.Getenv("POINTLIGHT_PORT"); p != "" {
		return p
	}
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// ActionsDir returns an optional directory of custom action definitions.
// Empty means built-in actions only.
func ActionsDir() string {
	return os.Getenv("POINTLIGHT_ACTIONS_DIR")
}

// FPS returns the default sampling rate from POINTLIGHT_FPS.
// Invalid or non-positive values fall back to DefaultFPS.
func FPS() float64 {
	return Float("POINTLIGHT_FPS", DefaultFPS)
}

// LogLevel returns the log level from LOG_LEVEL.
func LogLevel() string {
	return String("LOG_LEVEL", DefaultLogLevel)
}

// String returns the env var or def when unset.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Float returns a positive float env var or def.
func Float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

// Duration returns a duration env var (e.g. "500ms") or def.
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
