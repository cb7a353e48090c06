// pointlight-export: render an action to a video file or PNG frames
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-pointlight/internal/config"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/render/video"
)

var (
	action     = flag.String("action", "walk", "Action to export")
	out        = flag.String("out", "", "Output video file, or directory with -png (default <action>.mp4 or <action>/)")
	png        = flag.Bool("png", false, "Write numbered PNG frames instead of a video")
	actionsDir = flag.String("actions", config.ActionsDir(), "Directory of custom action definitions")
	from       = flag.Float64("from", -1, "Start time in seconds (default: action start)")
	to         = flag.Float64("to", -1, "End time in seconds (default: one period after start)")
	fps        = flag.Float64("fps", config.FPS(), "Frames per second")
	width      = flag.Int("width", 640, "Image width")
	height     = flag.Int("height", 480, "Image height")
	radius     = flag.Int("radius", 6, "Dot radius in pixels")
	fit        = flag.Bool("fit", false, "Fit the view to the exported frames")
	codec      = flag.String("codec", "mp4v", "Video FourCC codec")
	logLevel   = flag.String("log-level", config.LogLevel(), "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	reg, err := actions.NewDefaultRegistry(*actionsDir)
	if err != nil {
		return err
	}
	a, err := reg.Get(*action)
	if err != nil {
		return err
	}

	start := *from
	if start < 0 {
		start = a.Start()
	}
	end := *to
	if end < 0 {
		end = start + a.Generator.Period()
	}

	cfg := video.DefaultConfig()
	cfg.Width, cfg.Height = *width, *height
	cfg.Radius = *radius
	cfg.Fit = *fit
	cfg.Codec = *codec

	began := time.Now()
	frames, err := player.Sample(a.Name, a.Generator, start, end, *fps)
	if err != nil {
		return err
	}

	if *png {
		dir := *out
		if dir == "" {
			dir = a.Name
		}
		paths, err := video.WritePNGs(ctx, dir, a.Name, frames, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %d frames of %s written to %s/ in %v\n", len(paths), a.Name, dir, time.Since(began).Round(time.Millisecond))
		return nil
	}

	path := *out
	if path == "" {
		path = a.Name + ".mp4"
	}
	if err := video.WriteVideo(ctx, path, frames, *fps, cfg); err != nil {
		return err
	}
	fmt.Printf("✅ %s (%d frames, %.2fs) written to %s in %v\n", a.Name, len(frames), end-start, path, time.Since(began).Round(time.Millisecond))
	return nil
}
