// Package web serves point-light poses over HTTP and websockets.
package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/hub"
	"github.com/teslashibe/go-pointlight/pkg/player"
)

// Server is the pose service.
type Server struct {
	app      *fiber.App
	cfg      Config
	registry *actions.Registry

	// Shared broadcast stream
	liveHub    *hub.Hub
	live       *player.Player
	liveMu     sync.Mutex
	liveCancel context.CancelFunc
	liveDone   chan struct{}

	// Per-connection streams
	sessions atomic.Int64
}

// NewServer creates the service for the actions in reg.
func NewServer(reg *actions.Registry, cfg Config) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		liveHub:  hub.New("live"),
		live:     player.New(),
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if cfg.RequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/joints", s.handleJoints)
	api.Get("/actions", s.handleListActions)
	api.Get("/actions/:name", s.handleGetAction)
	api.Get("/actions/:name/pose", s.handlePose)
	api.Get("/actions/:name/frames", s.handleFrames)
	api.Get("/live", s.handleLiveStatus)
	api.Post("/live/:name", s.handleLivePlay)
	api.Delete("/live", s.handleLiveStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/stream/:name", requireFormat, s.requireAction, websocket.New(s.handleStream))
	app.Get("/ws/live", requireFormat, liveHandler(s.liveHub))

	s.app = app
	return s
}

// App returns the fiber app, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the live broadcast hub.
func (s *Server) Hub() *hub.Hub {
	return s.liveHub
}

// Start runs the hub and serves until the listener fails or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.liveHub.Run(ctx)

	log.Info("pose service listening", "port", s.cfg.Port, "actions", s.registry.Count())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(":" + s.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops live playback and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.StopLive()
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// errorHandler renders every error as {"error": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, actions.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, player.ErrInvalidRange), errors.Is(err, errBadQuery), errors.Is(err, hub.ErrUnknownFormat):
		code = fiber.StatusBadRequest
	case errors.Is(err, player.ErrAlreadyPlaying):
		code = fiber.StatusConflict
	}
	if code >= fiber.StatusInternalServerError {
		log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
