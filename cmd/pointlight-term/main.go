// pointlight-term: terminal point-light viewer
// Plays actions locally or from a pointlight server.
//
// Keys: space pause, r restart, n/p or arrows switch action, q quit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/teslashibe/go-pointlight/internal/config"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/render/term"
)

var (
	action     = flag.String("action", "walk", "Action to play")
	server     = flag.String("server", "", "Stream from a pointlight server (host:port or URL) instead of playing locally")
	actionsDir = flag.String("actions", config.ActionsDir(), "Directory of custom action definitions (local mode)")
	fps        = flag.Float64("fps", 30, "Frame rate")
	speed      = flag.Float64("speed", 1, "Playback speed")
	loop       = flag.Bool("loop", true, "Loop the action")
	format     = flag.String("format", "binary", "Stream wire format from a server (json or binary)")
	fit        = flag.Bool("fit", false, "Fit the view to each frame")
	radius     = flag.Float64("radius", 0, "Dot radius in columns")
	list       = flag.Bool("list", false, "List actions and exit")
	logLevel   = flag.String("log-level", "error", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := newSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	names, err := src.Names(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ list actions: %v\n", err)
		os.Exit(1)
	}
	if *list {
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	if err := run(ctx, src, names); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newSource() (source, error) {
	opts := playOptions{FPS: *fps, Speed: *speed, Loop: *loop, Format: *format}
	if *server != "" {
		return newRemoteSource(*server, opts)
	}
	return newLocalSource(*actionsDir, opts)
}

func run(ctx context.Context, src source, names []string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	cfg := term.DefaultConfig()
	cfg.Fit = *fit
	cfg.Radius = *radius
	r := term.New(screen, cfg)

	idx := indexOf(names, *action)
	if idx < 0 {
		return fmt.Errorf("unknown action %q", *action)
	}
	if err := src.Play(ctx, names[idx], r.Draw); err != nil {
		return err
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	paused := false
	for {
		select {
		case <-quit:
			return nil
		case <-src.Done():
			if err := src.Err(); err != nil {
				return err
			}
		case ev := <-events:
			cmd := term.Interpret(ev)
			switch cmd {
			case term.CommandQuit:
				return nil
			case term.CommandTogglePause:
				paused = !paused
				if paused {
					src.Pause()
				} else {
					src.Resume()
				}
				r.SetPaused(paused)
			case term.CommandRestart:
				paused = false
				r.SetPaused(false)
				if err := src.Play(ctx, names[idx], r.Draw); err != nil {
					return err
				}
			case term.CommandNext, term.CommandPrev:
				step := 1
				if cmd == term.CommandPrev {
					step = -1
				}
				idx = (idx + step + len(names)) % len(names)
				paused = false
				r.SetPaused(false)
				if err := src.Play(ctx, names[idx], r.Draw); err != nil {
					return err
				}
			case term.CommandRedraw:
				screen.Sync()
			}
		}
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
