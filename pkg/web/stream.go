package web

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/hub"
	"github.com/teslashibe/go-pointlight/pkg/player"
)

// closeGrace bounds the wait for a peer's close reply.
const closeGrace = 2 * time.Second

// Hello is the first message of a stream session.
type Hello struct {
	Session string  `json:"session"`
	Action  string  `json:"action"`
	FPS     float64 `json:"fps"`
	Speed   float64 `json:"speed"`
	Period  float64 `json:"period"`
	Loop    bool    `json:"loop"`
	Format  string  `json:"format"`
}

// Command is a control message sent by a stream client.
type Command struct {
	// Cmd is "pause", "resume" or "stop".
	Cmd string `json:"cmd"`
}

// handleStream plays one action for one connection. Query parameters:
// fps, speed, loop (default true) and format (json or binary).
func (s *Server) handleStream(c *websocket.Conn) {
	a, err := s.registry.Get(c.Params("name"))
	if err != nil {
		c.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	format, _ := hub.ParseFormat(c.Query("format"))
	hello := Hello{
		Session: uuid.NewString(),
		Action:  a.Name,
		FPS:     positive(c.Query("fps"), s.cfg.FPS),
		Speed:   positive(c.Query("speed"), 1),
		Period:  a.Generator.Period(),
		Loop:    c.Query("loop") != "false",
		Format:  format.String(),
	}
	if hello.FPS > s.cfg.MaxFPS {
		hello.FPS = s.cfg.MaxFPS
	}

	logger := log.With("session", hello.Session, "action", a.Name)
	n := s.sessions.Add(1)
	logger.Info("stream opened", "fps", hello.FPS, "speed", hello.Speed, "sessions", n)
	defer func() {
		n := s.sessions.Add(-1)
		logger.Info("stream closed", "sessions", n)
	}()

	if err := c.WriteJSON(hello); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := player.New()

	// Reader: control commands and disconnect detection. It must be done
	// with the connection before the handler returns it to the pool.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			var cmd Command
			if err := json.Unmarshal(data, &cmd); err != nil {
				logger.Debug("ignoring malformed command", "error", err)
				continue
			}
			switch cmd.Cmd {
			case "pause":
				p.Pause()
			case "resume":
				p.Resume()
			case "stop":
				p.Stop()
				return
			default:
				logger.Debug("ignoring unknown command", "cmd", cmd.Cmd)
			}
		}
	}()

	opts := player.Options{FrameRate: hello.FPS, Speed: hello.Speed, Loop: hello.Loop}
	err = p.PlayWithOptions(ctx, a.Name, a.Generator, func(f player.Frame) bool {
		wsType, data, err := encodeFrame(f, format)
		if err != nil {
			logger.Error("encode frame", "error", err)
			return false
		}
		return c.WriteMessage(wsType, data) == nil
	}, opts)
	if err != nil && ctx.Err() == nil {
		logger.Warn("stream playback failed", "error", err)
	}
	c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))

	// Give the peer a moment to answer the close, then unblock the reader.
	c.SetReadDeadline(time.Now().Add(closeGrace))
	<-readerDone
}

func encodeFrame(f player.Frame, format hub.Format) (int, []byte, error) {
	if format == hub.FormatBinary {
		data, err := f.MarshalBinary()
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(f)
	return websocket.TextMessage, data, err
}

// positive parses a positive float, falling back to def.
func positive(raw string, def float64) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(v > 0) || v > 1e6 {
		return def
	}
	return v
}
