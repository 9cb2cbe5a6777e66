package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/browser"
	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/ledger"
	"github.com/jb-miles/castscout/internal/photo"
	"github.com/jb-miles/castscout/internal/runner"
)

// Container bundles the assembled engine pieces. All heavy-weight
// initialization happens in Build so the command stays orchestration-only.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Ledger *ledger.Ledger
}

func Build(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	led, err := ledger.Open(cfg.Lookup.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("opening result ledger: %w", err)
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		Ledger: led,
	}, nil
}

// NewRunner wires a worker pool over real browser sessions.
func (c *Container) NewRunner() (*runner.Runner, error) {
	var writer *photo.Writer
	if c.Config.Photo.Enabled {
		writer = photo.NewWriter(c.Logger)
	}

	factory := func(ctx context.Context, id int) (browser.Driver, error) {
		session := browser.NewSession(id, c.Config.Lookup.Headless, c.Logger)
		if err := session.Launch(ctx); err != nil {
			return nil, err
		}
		return session, nil
	}

	return runner.New(c.Config, c.Logger, c.Ledger, writer, factory)
}

// Close flushes and releases the ledger stream.
func (c *Container) Close() error {
	return c.Ledger.Close()
}
