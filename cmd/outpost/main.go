package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/outpost/internal/core/game"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/injector"
)

func main() {
	cfg := game.DefaultConfig()
	level := flag.String("log", cfg.LogLevel.String(), "log level: debug, info, warn or error")
	flag.StringVar(&cfg.MapPath, "map", "", "map config file (.yaml or .json)")
	flag.StringVar(&cfg.ToolsPath, "tools", "", "tool config file")
	flag.StringVar(&cfg.AssetRoot, "assets", cfg.AssetRoot, "asset root directory")
	flag.StringVar(&cfg.TelemetryAddr, "addr", "", "telemetry listen address, empty to disable")
	flag.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "frame interval")
	flag.Parse()
	cfg.LogLevel = log.ParseLevel(*level)

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "outpost:", err)
		os.Exit(1)
	}
}

func run(cfg game.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := injector.InitializeSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.LoadMap(ctx); err != nil {
		return err
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopCh
		cancel()
	}()

	return session.Run(ctx)
}
