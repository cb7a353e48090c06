package video

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

func testFrame() player.Frame {
	pose := motion.RestPose(skeleton.Default(), r2.Vec{Y: 0.55})
	return player.Frame{Action: "rest", Points: pose}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 160, 120
	cfg.Radius = 3
	cfg.Antialias = false
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("Expected 640x480, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Background.R != 0 || cfg.Foreground.R != 255 {
		t.Error("Expected white on black")
	}
}

func TestNewCanvas_InvalidSize(t *testing.T) {
	cfg := testConfig()
	cfg.Width = 0
	if _, err := NewCanvas(cfg); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestCanvas_Draw(t *testing.T) {
	c, err := NewCanvas(testConfig())
	if err != nil {
		t.Fatalf("NewCanvas failed: %v", err)
	}
	defer c.Close()

	f := testFrame()
	c.Draw(f)

	head := c.Project(f.Points.At(skeleton.Head))
	px := c.Mat().GetVecbAt(head.Y, head.X)
	if px[0] != 255 || px[1] != 255 || px[2] != 255 {
		t.Errorf("Expected white at head %v, got %v", head, px)
	}
	corner := c.Mat().GetVecbAt(0, 0)
	if corner[0] != 0 || corner[1] != 0 || corner[2] != 0 {
		t.Errorf("Expected black corner, got %v", corner)
	}

	data, err := c.PNG()
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("Expected 160x120 png, got %v", b)
	}
}

func TestWritePNGs(t *testing.T) {
	reg, err := actions.NewDefaultRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	a, err := reg.Get("wave")
	if err != nil {
		t.Fatal(err)
	}
	frames, err := player.Sample(a.Name, a.Generator, 0, 0.2, 10)
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Fit = true
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WritePNGs(context.Background(), dir, "wave", frames, cfg)
	if err != nil {
		t.Fatalf("WritePNGs failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(paths))
	}
	if filepath.Base(paths[2]) != "wave_00002.png" {
		t.Errorf("Unexpected name %s", paths[2])
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
		}
	}

	if _, err := WritePNGs(context.Background(), dir, "none", nil, cfg); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Expected ErrNoFrames, got %v", err)
	}
}

func TestExport(t *testing.T) {
	reg, err := actions.NewDefaultRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	a, err := reg.Get("walk")
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Codec = "MJPG"
	path := filepath.Join(t.TempDir(), "walk.avi")
	n, err := Export(context.Background(), path, a.Name, a.Generator, 0, 0.5, 10, cfg)
	if errors.Is(err, ErrWriterUnavailable) {
		t.Skip("OpenCV video writer unavailable, skipping test")
	}
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 6 {
		t.Errorf("Expected 6 frames, got %d", n)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty video file, got %v", err)
	}
}
