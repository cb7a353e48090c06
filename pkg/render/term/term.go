// Package term draws point-light frames in a terminal with tcell.
//
// Each joint is a filled dot of one colour on a black background. World
// coordinates are mapped with a uniform scale, correcting for terminal
// cells being taller than they are wide.
package term

import (
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/render"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config controls how frames are drawn.
type Config struct {
	// Dot is the rune used for joint cells.
	Dot rune
	// Radius of each dot in columns. Zero draws a single cell.
	Radius float64
	// Foreground and Background colours.
	Foreground tcell.Color
	Background tcell.Color
	// CellAspect is cell height over cell width.
	CellAspect float64
	// Margin in cells around the view.
	Margin int
	// View is the world window mapped onto the screen. When Fit is set
	// it is replaced by each frame's bounds plus Padding.
	View    render.View
	Fit     bool
	Padding float64
	// Status shows action, time and frame on the last row.
	Status bool
}

// DefaultConfig returns white dots on black in a fixed window around a
// standing figure, with a status line.
func DefaultConfig() Config {
	return Config{
		Dot:        '●',
		Radius:     0,
		Foreground: tcell.ColorWhite,
		Background: tcell.ColorBlack,
		CellAspect: 2,
		Margin:     1,
		View:       render.DefaultView(),
		Padding:    0.15,
		Status:     true,
	}
}

// Renderer draws frames onto a screen. It is safe for concurrent use.
type Renderer struct {
	mu     sync.Mutex
	screen tcell.Screen
	cfg    Config
	paused bool
}

// New creates a renderer on an initialised screen.
func New(screen tcell.Screen, cfg Config) *Renderer {
	if cfg.CellAspect <= 0 {
		cfg.CellAspect = 2
	}
	if cfg.Dot == 0 {
		cfg.Dot = '●'
	}
	return &Renderer{screen: screen, cfg: cfg}
}

// SetView replaces the world window and disables fitting.
func (r *Renderer) SetView(v render.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.View = v
	r.cfg.Fit = false
}

// SetPaused marks the status line as paused.
func (r *Renderer) SetPaused(paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = paused
}

func (r *Renderer) projection(w, h int, view render.View) render.Projection {
	m := float64(r.cfg.Margin)
	availW := float64(w) - 2*m
	availH := float64(h) - 2*m
	if r.cfg.Status {
		availH--
	}
	return render.NewProjection(view, m, m, availW, availH, r.cfg.CellAspect)
}

// Project returns the cell a world point lands on for the current screen
// size. ok is false when it falls outside the screen.
func (r *Renderer) Project(v r2.Vec) (x, y int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, h := r.screen.Size()
	fx, fy := r.projection(w, h, r.cfg.View).Apply(v)
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, x >= 0 && y >= 0 && x < w && y < h
}

// Draw renders one frame and shows it.
func (r *Renderer) Draw(f player.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bg := tcell.StyleDefault.Background(r.cfg.Background).Foreground(r.cfg.Background)
	fg := tcell.StyleDefault.Background(r.cfg.Background).Foreground(r.cfg.Foreground)

	w, h := r.screen.Size()
	r.screen.Fill(' ', bg)

	view := r.cfg.View
	if r.cfg.Fit {
		view = render.FitView(r.cfg.Padding, f.Points)
	}
	proj := r.projection(w, h, view)

	for _, p := range f.Points {
		cx, cy := proj.Apply(p)
		r.dot(cx, cy, w, h, fg)
	}

	if r.cfg.Status {
		status := fmt.Sprintf(" %s  t=%.2fs  frame %d", f.Action, f.T, f.Index)
		if r.paused {
			status += "  [paused]"
		}
		r.text(0, h-1, status, w, fg)
	}

	r.screen.Show()
}

// dot fills the cells within Radius of (cx, cy). The centre cell is
// always drawn.
func (r *Renderer) dot(cx, cy float64, w, h int, style tcell.Style) {
	rx := r.cfg.Radius
	ry := rx / r.cfg.CellAspect
	mx, my := int(math.Floor(cx)), int(math.Floor(cy))
	x0, x1 := int(math.Floor(cx-rx)), int(math.Floor(cx+rx))
	y0, y1 := int(math.Floor(cy-ry)), int(math.Floor(cy+ry))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			if rx > 0 && (x != mx || y != my) {
				ddx := (float64(x) + 0.5 - cx) / rx
				ddy := (float64(y) + 0.5 - cy) / ry
				if ddx*ddx+ddy*ddy > 1 {
					continue
				}
			}
			r.screen.SetContent(x, y, r.cfg.Dot, nil, style)
		}
	}
}

func (r *Renderer) text(x, y int, s string, w int, style tcell.Style) {
	for _, c := range s {
		if x >= w {
			return
		}
		r.screen.SetContent(x, y, c, nil, style)
		x++
	}
}
