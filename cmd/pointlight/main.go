// pointlight: point-light pose service
// Serves action poses over HTTP and streams frames over WebSocket
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-pointlight/internal/config"
	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/web"
)

var (
	version    = "0.1.0"
	port       = flag.String("port", config.Port(), "HTTP server port")
	actionsDir = flag.String("actions", config.ActionsDir(), "Directory of custom action definitions")
	fps        = flag.Float64("fps", config.FPS(), "Default stream frame rate")
	logLevel   = flag.String("log-level", config.LogLevel(), "Log level (debug, info, warn, error)")
	debug      = flag.Bool("debug", false, "Enable request logging")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	fmt.Println()
	fmt.Println("🕴  pointlight v" + version)
	fmt.Println("   Point-light pose service")
	fmt.Println()

	reg, err := actions.NewDefaultRegistry(*actionsDir)
	if err != nil {
		log.Error("load actions", "dir", *actionsDir, "error", err)
		os.Exit(1)
	}

	cfg := web.DefaultConfig()
	cfg.Port = *port
	cfg.FPS = *fps
	cfg.AppName = "pointlight " + version
	if *debug {
		cfg.RequestLog = true
	}
	srv := web.NewServer(reg, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		cancel()
	}()

	log.Info("endpoints",
		"health", fmt.Sprintf("http://localhost:%s/health", cfg.Port),
		"actions", fmt.Sprintf("http://localhost:%s/api/actions", cfg.Port),
		"stream", fmt.Sprintf("ws://localhost:%s/ws/stream/walk", cfg.Port),
		"live", fmt.Sprintf("ws://localhost:%s/ws/live", cfg.Port))

	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("goodbye")
}
