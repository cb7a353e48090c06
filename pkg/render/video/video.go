// Package video renders point-light frames with OpenCV: single images,
// numbered PNG sequences and video files.
package video

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/render"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrWriterUnavailable means OpenCV could not open a video writer for
	// the requested codec and path.
	ErrWriterUnavailable = errors.New("video: writer unavailable")
	// ErrNoFrames is returned when there is nothing to export.
	ErrNoFrames = errors.New("video: no frames")
)

// Config controls image size, dot appearance and framing.
type Config struct {
	Width, Height int
	// Radius of each dot in pixels.
	Radius     int
	Foreground color.RGBA
	Background color.RGBA
	// View is the world window. When Fit is set, exports use the bounds
	// of all frames plus Padding instead.
	View    render.View
	Fit     bool
	Padding float64
	// Codec is a FourCC such as "mp4v" or "MJPG".
	Codec string
	// Antialias draws smooth dot edges.
	Antialias bool
}

// DefaultConfig returns 640x480 white dots on black.
func DefaultConfig() Config {
	return Config{
		Width:      640,
		Height:     480,
		Radius:     6,
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.RGBA{A: 255},
		View:       render.DefaultView(),
		Padding:    0.15,
		Codec:      "mp4v",
		Antialias:  true,
	}
}

// Canvas is a reusable BGR image frames are drawn onto. Close it when
// done.
type Canvas struct {
	mu   sync.Mutex
	cfg  Config
	view render.View
	mat  gocv.Mat
}

// NewCanvas allocates a canvas.
func NewCanvas(cfg Config) (*Canvas, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("video: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Radius <= 0 {
		cfg.Radius = 1
	}
	return &Canvas{
		cfg:  cfg,
		view: cfg.View,
		mat:  gocv.NewMatWithSize(cfg.Height, cfg.Width, gocv.MatTypeCV8UC3),
	}, nil
}

// SetView changes the world window.
func (c *Canvas) SetView(v render.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
}

// Project returns the pixel a world point lands on.
func (c *Canvas) Project(v r2.Vec) image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project(v)
}

func (c *Canvas) project(v r2.Vec) image.Point {
	p := render.NewProjection(c.view, 0, 0, float64(c.cfg.Width), float64(c.cfg.Height), 1)
	px, py := p.Apply(v)
	return image.Pt(int(math.Round(px)), int(math.Round(py)))
}

// Draw clears the canvas and draws the frame's joints.
func (c *Canvas) Draw(f player.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mat.SetTo(scalar(c.cfg.Background))
	lineType := gocv.Line8
	if c.cfg.Antialias {
		lineType = gocv.LineAA
	}
	for _, p := range f.Points {
		gocv.CircleWithParams(&c.mat, c.project(p), c.cfg.Radius, c.cfg.Foreground, -1, lineType, 0)
	}
}

// Mat returns the canvas image. It is only valid until the next Draw.
func (c *Canvas) Mat() *gocv.Mat {
	return &c.mat
}

// Image copies the canvas into a Go image.
func (c *Canvas) Image() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mat.ToImage()
}

// PNG encodes the canvas.
func (c *Canvas) PNG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, c.mat)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the image memory.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mat.Close()
}

func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}
