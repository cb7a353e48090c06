package term

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/render"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

// restFrame is the rest pose with the right side shifted forward so
// that left and right joints do not overlap.
func restFrame() player.Frame {
	pose := motion.RestPose(skeleton.Default(), r2.Vec{Y: 0.55})
	for _, id := range skeleton.All() {
		if strings.HasPrefix(id.String(), "right_") {
			pose[id] = r2.Add(pose[id], r2.Vec{X: 0.15})
		}
	}
	return player.Frame{Action: "walk", T: 1.25, Index: 75, Points: pose}
}

func countDots(screen tcell.Screen, dot rune) int {
	w, h := screen.Size()
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c, _, _, _ := screen.GetContent(x, y); c == dot {
				n++
			}
		}
	}
	return n
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(c)
	}
	return b.String()
}

func TestDraw(t *testing.T) {
	screen := newScreen(t, 120, 48)
	cfg := DefaultConfig()
	cfg.Fit = true
	r := New(screen, cfg)

	f := restFrame()
	r.Draw(f)

	// Joints close together may share a cell.
	n := countDots(screen, cfg.Dot)
	if n < 9 || n > skeleton.NumJoints {
		t.Errorf("Expected between 10 and %d dots, got %d", skeleton.NumJoints, n)
	}

	status := rowText(screen, 47)
	if !strings.Contains(status, "walk") || !strings.Contains(status, "frame 75") {
		t.Errorf("Expected status line, got %q", status)
	}

	r.SetPaused(true)
	r.Draw(f)
	if !strings.Contains(rowText(screen, 47), "[paused]") {
		t.Error("Expected paused marker")
	}
}

func TestDraw_Style(t *testing.T) {
	screen := newScreen(t, 80, 40)
	cfg := DefaultConfig()
	cfg.Status = false
	r := New(screen, cfg)
	r.Draw(restFrame())

	head := restFrame().Points.At(skeleton.Head)
	x, y, ok := r.Project(head)
	if !ok {
		t.Fatalf("Expected head on screen")
	}
	c, _, style, _ := screen.GetContent(x, y)
	if c != cfg.Dot {
		t.Errorf("Expected dot at head cell, got %q", c)
	}
	fg, bg, _ := style.Decompose()
	if fg != cfg.Foreground || bg != cfg.Background {
		t.Errorf("Expected %v on %v, got %v on %v", cfg.Foreground, cfg.Background, fg, bg)
	}

	_, _, style, _ = screen.GetContent(0, 0)
	if _, bg, _ := style.Decompose(); bg != cfg.Background {
		t.Errorf("Expected black background, got %v", bg)
	}
}

func TestDraw_Radius(t *testing.T) {
	screen := newScreen(t, 200, 80)
	cfg := DefaultConfig()
	cfg.Status = false
	r := New(screen, cfg)
	r.Draw(restFrame())
	single := countDots(screen, cfg.Dot)

	cfg.Radius = 1.5
	r = New(screen, cfg)
	r.Draw(restFrame())
	if got := countDots(screen, cfg.Dot); got <= single {
		t.Errorf("Expected larger dots to cover more than %d cells, got %d", single, got)
	}
}

func TestProject(t *testing.T) {
	screen := newScreen(t, 100, 51)
	cfg := DefaultConfig()
	cfg.Status = false
	cfg.Margin = 0
	cfg.View = render.View{Min: r2.Vec{X: -1, Y: 0}, Max: r2.Vec{X: 1, Y: 1}}
	r := New(screen, cfg)

	lx, ly, ok := r.Project(r2.Vec{X: -0.9, Y: 0.5})
	if !ok {
		t.Fatal("Expected point on screen")
	}
	rx, ry, _ := r.Project(r2.Vec{X: 0.9, Y: 0.5})
	if rx <= lx || ry != ly {
		t.Errorf("Expected x to grow rightwards on one row, got (%d,%d) and (%d,%d)", lx, ly, rx, ry)
	}

	_, top, _ := r.Project(r2.Vec{Y: 0.9})
	_, bottom, _ := r.Project(r2.Vec{Y: 0.1})
	if top >= bottom {
		t.Errorf("Expected y up to map to smaller rows, got top %d bottom %d", top, bottom)
	}

	if _, _, ok := r.Project(r2.Vec{X: 50}); ok {
		t.Error("Expected far point off screen")
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		ev   tcell.Event
		want Command
	}{
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), CommandQuit},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), CommandQuit},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), CommandQuit},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), CommandTogglePause},
		{tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), CommandRestart},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), CommandNext},
		{tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), CommandPrev},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), CommandNone},
		{tcell.NewEventResize(80, 24), CommandRedraw},
	}
	for i, tt := range tests {
		if got := Interpret(tt.ev); got != tt.want {
			t.Errorf("case %d: expected %d, got %d", i, tt.want, got)
		}
	}
}
