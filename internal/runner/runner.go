package runner

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/browser"
	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/constants"
	"github.com/jb-miles/castscout/internal/ledger"
	"github.com/jb-miles/castscout/internal/lookup"
	"github.com/jb-miles/castscout/internal/photo"
	"github.com/jb-miles/castscout/internal/util"
)

// DriverFactory produces a launched browser session for worker slot id.
// A factory error during startup is fatal to the whole run.
type DriverFactory func(ctx context.Context, id int) (browser.Driver, error)

// Runner fans the ordered input list out across a bounded set of workers.
// The only shared mutable state is the claim cursor and the append-only
// ledger; each worker exclusively owns its session.
type Runner struct {
	cfg       *config.Config
	logger    *zap.Logger
	ledger    *ledger.Ledger
	writer    *photo.Writer
	newDriver DriverFactory

	base      *url.URL
	photoDirs []string

	baseDelay time.Duration
	jitter    time.Duration
}

func New(cfg *config.Config, log *zap.Logger, led *ledger.Ledger, writer *photo.Writer, factory DriverFactory) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	base, err := url.Parse(cfg.Lookup.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	r := &Runner{
		cfg:       cfg,
		logger:    log,
		ledger:    led,
		writer:    writer,
		newDriver: factory,
		base:      base,
		baseDelay: cfg.Lookup.BaseDelay,
		jitter:    constants.PoolConfig.DelayJitter,
	}
	if cfg.Photo.Enabled && writer != nil {
		r.photoDirs = photo.DestinationDirs(cfg.Photo)
	}
	return r, nil
}

// Run processes names to completion. With resume enabled, names already
// recorded in the ledger (any status, errors included) are skipped.
func (r *Runner) Run(ctx context.Context, names []string) error {
	if r.cfg.Lookup.Resume {
		done, err := ledger.CompletedSet(r.cfg.Lookup.OutputPath)
		if err != nil {
			return fmt.Errorf("reading ledger for resume: %w", err)
		}
		var remaining []string
		for _, name := range names {
			if _, ok := done[name]; ok {
				continue
			}
			remaining = append(remaining, name)
		}
		r.logger.Info("resume filter applied",
			zap.Int("input", len(names)),
			zap.Int("already_done", len(names)-len(remaining)),
			zap.Int("remaining", len(remaining)),
		)
		names = remaining
	}

	if len(names) == 0 {
		r.logger.Info("nothing to process")
		return nil
	}

	workers := r.cfg.Lookup.Concurrency
	if workers > len(names) {
		workers = len(names)
	}
	r.logger.Info("starting lookup run",
		zap.Int("items", len(names)),
		zap.Int("workers", workers),
		zap.Bool("photos", r.photoDirs != nil),
	)

	var cursor atomic.Int64
	p := pool.New().WithErrors()
	for i := 0; i < workers; i++ {
		id := i
		p.Go(func() error {
			return r.worker(ctx, id, &cursor, names)
		})
	}
	return p.Wait()
}

// worker claims indexes off the shared cursor until the list is drained.
// Within one worker items are processed strictly in claim order.
func (r *Runner) worker(ctx context.Context, id int, cursor *atomic.Int64, names []string) error {
	log := r.logger.With(zap.Int("worker", id))

	drv, err := r.newDriver(ctx, id)
	if err != nil {
		return fmt.Errorf("worker %d: launching session: %w", id, err)
	}
	defer drv.Close()

	nav := lookup.NewNavigator(drv, r.cfg.Lookup.NavTimeout, log)
	processed := 0

	for {
		if ctx.Err() != nil {
			log.Info("run cancelled, worker stopping between items")
			return nil
		}
		idx := int(cursor.Add(1)) - 1
		if idx >= len(names) {
			break
		}

		res, sessionErr := r.processItem(ctx, drv, nav, names[idx], log)
		if ctx.Err() != nil {
			// a cancellation mid-item leaves the item unrecorded so the
			// next run retries it from scratch
			log.Info("run cancelled mid-item, leaving item for the next run",
				zap.String("performer", res.Performer),
			)
			return nil
		}
		if err := r.ledger.Append(res); err != nil {
			log.Error("failed to append ledger row",
				zap.String("performer", res.Performer),
				zap.Error(err),
			)
		}
		log.Info("item recorded",
			zap.String("performer", res.Performer),
			zap.String("status", string(res.Status)),
			zap.String("matched_url", res.MatchedURL),
		)

		processed++
		if processed%constants.PoolConfig.ProgressInterval == 0 {
			log.Info("progress",
				zap.Int("processed_by_worker", processed),
				zap.Int64("claimed_total", cursor.Load()),
				zap.Int("items", len(names)),
			)
		}

		if sessionErr != nil {
			log.Error("session unrecoverable, worker retiring", zap.Error(sessionErr))
			return nil
		}

		// pacing delay after every item regardless of outcome
		if err := util.SleepContext(ctx, util.JitteredDelay(r.baseDelay, r.jitter)); err != nil {
			return nil
		}
	}

	log.Info("worker finished", zap.Int("processed", processed))
	return nil
}
