package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/export"
	"github.com/jb-miles/castscout/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Export.ServerURL, "server", cfg.Export.ServerURL, "media server base URL")
	flag.StringVar(&cfg.Export.Token, "token", cfg.Export.Token, "media server auth token")
	flag.StringVar(&cfg.Export.OutputPath, "output", cfg.Export.OutputPath, "name list output path")
	flag.StringVar(&cfg.Export.CheckpointPath, "checkpoint", cfg.Export.CheckpointPath, "checkpoint JSON path")
	flag.Parse()

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Export.Token == "" {
		logger.Error("A media server token is required (-token or CASTSCOUT_PLEX_TOKEN)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	exporter := export.NewExporter(cfg.Export, logger)
	if err := exporter.Run(ctx); err != nil {
		logger.Error("Export failed (checkpoint keeps progress, rerun to resume)", zap.Error(err))
		os.Exit(1)
	}
}
