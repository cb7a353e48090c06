package web

import (
	"github.com/teslashibe/go-pointlight/internal/config"
)

// Config configures the HTTP/websocket service.
type Config struct {
	// Port to listen on.
	Port string

	// AppName is reported by fiber.
	AppName string

	// FPS is the default frame rate for streams and sampling.
	FPS float64

	// MaxFPS caps client-requested frame rates.
	MaxFPS float64

	// AllowOrigins is the CORS origin list.
	AllowOrigins string

	// RequestLog enables the fiber request logger.
	RequestLog bool
}

// DefaultConfig returns a Config populated from the environment.
func DefaultConfig() Config {
	return Config{
		Port:         config.Port(),
		AppName:      "pointlight",
		FPS:          config.FPS(),
		MaxFPS:       240,
		AllowOrigins: "*",
		RequestLog:   config.LogLevel() == "debug",
	}
}
