package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/app"
	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/runner"
	"github.com/jb-miles/castscout/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// flags override the env-derived defaults
	flag.StringVar(&cfg.Lookup.InputPath, "input", cfg.Lookup.InputPath, "input list, one performer name per line")
	flag.StringVar(&cfg.Lookup.OutputPath, "output", cfg.Lookup.OutputPath, "result ledger CSV path")
	flag.StringVar(&cfg.Logging.File, "log", cfg.Logging.File, "log file path (empty for stdout only)")
	flag.IntVar(&cfg.Lookup.Concurrency, "concurrency", cfg.Lookup.Concurrency, "parallel browser sessions (capped at 3)")
	flag.DurationVar(&cfg.Lookup.BaseDelay, "delay", cfg.Lookup.BaseDelay, "base inter-item pacing delay")
	flag.BoolVar(&cfg.Lookup.Resume, "resume", cfg.Lookup.Resume, "skip names already recorded in the ledger")
	flag.BoolVar(&cfg.Lookup.Headless, "headless", cfg.Lookup.Headless, "run Chrome headless")
	flag.DurationVar(&cfg.Lookup.NavTimeout, "timeout", cfg.Lookup.NavTimeout, "per-navigation timeout")
	flag.BoolVar(&cfg.Photo.Enabled, "photos", cfg.Photo.Enabled, "harvest headshot images")
	flag.StringVar(&cfg.Photo.Root, "photo-root", cfg.Photo.Root, "photo destination root")
	photoKind := flag.String("photo-kind", string(cfg.Photo.Kind), "photo destinations: poster, face or both")
	flag.BoolVar(&cfg.Photo.Overwrite, "photo-overwrite", cfg.Photo.Overwrite, "overwrite existing photo files")
	flag.Parse()
	cfg.Photo.Kind = config.PhotoKind(*photoKind)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("castscout starting",
		zap.String("input", cfg.Lookup.InputPath),
		zap.String("output", cfg.Lookup.OutputPath),
		zap.Int("concurrency", cfg.Lookup.Concurrency),
		zap.Bool("resume", cfg.Lookup.Resume),
		zap.Bool("photos", cfg.Photo.Enabled),
	)

	names, err := runner.ReadNames(cfg.Lookup.InputPath)
	if err != nil {
		logger.Error("Failed to read input list", zap.Error(err))
		os.Exit(1)
	}

	container, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("Failed to assemble engine", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	run, err := container.NewRunner()
	if err != nil {
		logger.Error("Failed to build runner", zap.Error(err))
		os.Exit(1)
	}

	// stop between items on SIGINT/SIGTERM; sessions close and the ledger
	// flushes before exit
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	start := time.Now()
	if err := run.Run(ctx, names); err != nil {
		logger.Error("Run failed", zap.Error(err))
		container.Close()
		os.Exit(1)
	}

	logger.Info("Run complete", zap.Duration("elapsed", time.Since(start)))
}
