package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/fieldofview/internal/config"
	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/injector"
)

func main() {
	var (
		configPath = flag.String("config", "", "scene config (.yaml or .json); defaults are used when empty")
		frames     = flag.Uint64("frames", 0, "stop after this many frames; 0 runs until interrupted")
		viewerAddr = flag.String("viewer", "", "enable the websocket viewer on this address")
		record     = flag.String("record", "", "write a zstd frame recording to this path")
		level      = flag.String("log-level", "", "override the configured log level")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	if *viewerAddr != "" {
		cfg.Viewer.Enabled = true
		cfg.Viewer.Addr = *viewerAddr
	}
	if *record != "" {
		cfg.Record.Path = *record
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(2)
	}

	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		log.Provide().Error("initialize runtime", log.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx, *frames); err != nil {
		rt.Logger.Error("simulation failed", log.Error(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		c := config.Default()
		return &c, nil
	}
	return config.LoadFile(path)
}
