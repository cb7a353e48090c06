package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/render"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gocv.io/x/gocv"
)

// newCanvasFor creates a canvas framed for frames.
func newCanvasFor(frames []player.Frame, cfg Config) (*Canvas, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if cfg.Fit {
		poses := make([]skeleton.Pose, len(frames))
		for i, f := range frames {
			poses[i] = f.Points
		}
		cfg.View = render.FitView(cfg.Padding, poses...)
	}
	return NewCanvas(cfg)
}

// WriteVideo encodes frames to a video file at fps.
func WriteVideo(ctx context.Context, path string, frames []player.Frame, fps float64, cfg Config) error {
	c, err := newCanvasFor(frames, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	w, err := gocv.VideoWriterFile(path, cfg.Codec, fps, cfg.Width, cfg.Height, true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriterUnavailable, err)
	}
	defer w.Close()
	if !w.IsOpened() {
		return fmt.Errorf("%w: %s (%s)", ErrWriterUnavailable, path, cfg.Codec)
	}

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Draw(f)
		if err := w.Write(*c.Mat()); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Index, err)
		}
	}

	log.Info("video written", "path", path, "frames", len(frames), "fps", fps)
	return nil
}

// WritePNGs writes frames as numbered PNG files in dir and returns their
// paths.
func WritePNGs(ctx context.Context, dir, prefix string, frames []player.Frame, cfg Config) ([]string, error) {
	c, err := newCanvasFor(frames, cfg)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		c.Draw(f)
		path := filepath.Join(dir, fmt.Sprintf("%s_%05d.png", prefix, f.Index))
		if !gocv.IMWrite(path, *c.Mat()) {
			return paths, fmt.Errorf("write %s failed", path)
		}
		paths = append(paths, path)
	}

	log.Info("frames written", "dir", dir, "count", len(paths))
	return paths, nil
}

// Export samples gen over [from, to] at fps and writes a video.
func Export(ctx context.Context, path, name string, gen motion.Generator, from, to, fps float64, cfg Config) (int, error) {
	frames, err := player.Sample(name, gen, from, to, fps)
	if err != nil {
		return 0, err
	}
	if err := WriteVideo(ctx, path, frames, fps, cfg); err != nil {
		return 0, err
	}
	return len(frames), nil
}
