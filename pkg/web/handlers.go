package web

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/hub"
	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
)

var errBadQuery = errors.New("invalid query parameter")

// JointInfo describes one joint of the skeleton.
type JointInfo struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Parent *string `json:"parent"`
	Length float64 `json:"length,omitempty"`
}

// ActionDetail is the response of GET /api/actions/:name.
type ActionDetail struct {
	actions.Summary
	Phases     []string            `json:"phases,omitempty"`
	Start      float64             `json:"start"`
	Definition *actions.Definition `json:"definition"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"actions":  s.registry.Count(),
		"sessions": s.sessions.Load(),
		"clients":  s.liveHub.ClientCount(),
		"live":     s.live.Current(),
	})
}

// handleJoints returns the joint order of the default skeleton.
func (s *Server) handleJoints(c *fiber.Ctx) error {
	skel := skeleton.Default()
	joints := make([]JointInfo, 0, skeleton.NumJoints)
	for _, id := range skeleton.All() {
		info := JointInfo{ID: int(id), Name: id.String()}
		if parent, ok := skel.ParentOf(id); ok {
			name := parent.String()
			info.Parent = &name
			info.Length, _ = skel.SegmentLength(id)
		}
		joints = append(joints, info)
	}
	return c.JSON(joints)
}

func (s *Server) handleListActions(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		var found []actions.Summary
		for _, name := range s.registry.Search(q) {
			if a, err := s.registry.Get(name); err == nil {
				found = append(found, a.Summary())
			}
		}
		return c.JSON(fiber.Map{"query": q, "actions": found})
	}
	return c.JSON(fiber.Map{
		"actions":    s.registry.Summaries(),
		"categories": s.registry.Categories(),
	})
}

func (s *Server) handleGetAction(c *fiber.Ctx) error {
	a, err := s.registry.Get(c.Params("name"))
	if err != nil {
		return err
	}

	detail := ActionDetail{Summary: a.Summary(), Start: a.Start(), Definition: a.Definition}
	if a.Definition != nil {
		for _, p := range a.Definition.Phases {
			detail.Phases = append(detail.Phases, p.Name)
		}
	}
	return c.JSON(detail)
}

func (s *Server) handlePose(c *fiber.Ctx) error {
	a, err := s.registry.Get(c.Params("name"))
	if err != nil {
		return err
	}
	t, err := queryFloat(c, "t", a.Start())
	if err != nil {
		return err
	}

	frame := player.Frame{Action: a.Name, T: t, Points: a.PoseAt(t)}
	if g, ok := a.Generator.(*motion.Procedural); ok {
		return c.JSON(fiber.Map{
			"action": frame.Action,
			"t":      frame.T,
			"frame":  frame.Index,
			"points": frame.Points,
			"phase":  g.PhaseName(t),
		})
	}
	return c.JSON(frame)
}

func (s *Server) handleFrames(c *fiber.Ctx) error {
	a, err := s.registry.Get(c.Params("name"))
	if err != nil {
		return err
	}
	from, err := queryFloat(c, "from", a.Start())
	if err != nil {
		return err
	}
	to, err := queryFloat(c, "to", from+a.Generator.Period())
	if err != nil {
		return err
	}
	fps, err := queryFloat(c, "fps", s.cfg.FPS)
	if err != nil {
		return err
	}
	if fps > s.cfg.MaxFPS {
		return fmt.Errorf("%w: fps %g above %g", player.ErrInvalidRange, fps, s.cfg.MaxFPS)
	}

	frames, err := player.Sample(a.Name, a.Generator, from, to, fps)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"action": a.Name, "fps": fps, "frames": frames})
}

// requireAction rejects unknown actions before a websocket upgrade.
func (s *Server) requireAction(c *fiber.Ctx) error {
	if _, err := s.registry.Get(c.Params("name")); err != nil {
		return err
	}
	return c.Next()
}

// requireFormat rejects unknown wire formats before a websocket upgrade.
func requireFormat(c *fiber.Ctx) error {
	if _, err := hub.ParseFormat(c.Query("format")); err != nil {
		return err
	}
	return c.Next()
}

// queryFloat parses a finite float query parameter.
func queryFloat(c *fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", errBadQuery, key, raw)
	}
	return v, nil
}
