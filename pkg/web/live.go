package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/hub"
	"github.com/teslashibe/go-pointlight/pkg/player"
)

// LiveRequest is the optional body of POST /api/live/:name.
type LiveRequest struct {
	FPS   float64 `json:"fps"`
	Speed float64 `json:"speed"`
	Loop  *bool   `json:"loop"`
}

// liveHandler attaches websocket clients to the broadcast hub. The
// format query parameter has already been checked by requireFormat.
func liveHandler(h *hub.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		format, _ := hub.ParseFormat(c.Query("format"))
		client := hub.NewClient(h, c, format)
		if client == nil {
			return
		}
		client.Run()
	})
}

// PlayLive starts broadcasting an action to every /ws/live client,
// replacing whatever was playing.
func (s *Server) PlayLive(name string, opts player.Options) error {
	a, err := s.registry.Get(name)
	if err != nil {
		return err
	}

	s.liveMu.Lock()
	defer s.liveMu.Unlock()
	s.stopLiveLocked()

	ctx, cancel := context.WithCancel(context.Background())
	result, err := s.live.Start(ctx, a.Name, a.Generator, func(f player.Frame) bool {
		if err := s.liveHub.Publish(f); err != nil {
			log.Error("encode live frame", "error", err)
			return false
		}
		return true
	}, opts)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	s.liveCancel = cancel
	s.liveDone = done
	go func() {
		defer close(done)
		if err := <-result; err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("live playback ended", "action", a.Name, "error", err)
		}
	}()

	log.Info("live playback started", "action", a.Name, "clients", s.liveHub.ClientCount())
	return nil
}

// StopLive stops the broadcast, if any, and waits for it to end.
func (s *Server) StopLive() {
	s.liveMu.Lock()
	defer s.liveMu.Unlock()
	s.stopLiveLocked()
}

// stopLiveLocked requires liveMu.
func (s *Server) stopLiveLocked() {
	if s.liveCancel == nil {
		return
	}
	s.liveCancel()
	<-s.liveDone
	s.liveCancel = nil
	s.liveDone = nil
}

func (s *Server) handleLivePlay(c *fiber.Ctx) error {
	var req LiveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	opts := player.DefaultOptions()
	opts.FrameRate = s.cfg.FPS
	opts.Loop = true
	if req.FPS > 0 {
		opts.FrameRate = min(req.FPS, s.cfg.MaxFPS)
	}
	if req.Speed > 0 {
		opts.Speed = req.Speed
	}
	if req.Loop != nil {
		opts.Loop = *req.Loop
	}

	name := c.Params("name")
	if err := s.PlayLive(name, opts); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "playing",
		"action": name,
		"loop":   opts.Loop,
	})
}

func (s *Server) handleLiveStop(c *fiber.Ctx) error {
	s.StopLive()
	return c.JSON(fiber.Map{"status": "stopped"})
}

func (s *Server) handleLiveStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"action":  s.live.Current(),
		"state":   s.live.State().String(),
		"elapsed": s.live.Elapsed().Seconds(),
		"clients": s.liveHub.ClientCount(),
	})
}
