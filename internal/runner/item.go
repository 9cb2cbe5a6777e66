package runner

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/browser"
	"github.com/jb-miles/castscout/internal/domain"
	"github.com/jb-miles/castscout/internal/lookup"
	"github.com/jb-miles/castscout/internal/photo"
	"github.com/jb-miles/castscout/internal/util"
)

// processItem runs the full pipeline for one performer: search, challenge
// handling, candidate extraction, match selection, optional photo harvest.
// Every failure is absorbed into a status=error result so the run never
// stalls on one bad input. The second return value is non-nil only when the
// session died and could not be relaunched.
func (r *Runner) processItem(ctx context.Context, drv browser.Driver, nav *lookup.Navigator, name string, log *zap.Logger) (domain.LookupResult, error) {
	res := domain.LookupResult{
		Performer:  name,
		Status:     domain.StatusError,
		SearchedAt: time.Now(),
	}

	if err := nav.Navigate(ctx, r.searchURL(name)); err != nil {
		log.Warn("search navigation failed",
			zap.String("performer", name),
			zap.String("kind", browser.Classify(err).String()),
			zap.Error(err),
		)
		return res, r.recoverSession(ctx, drv, err, log)
	}

	html, err := drv.HTML(ctx)
	if err != nil {
		log.Warn("reading results page failed", zap.String("performer", name), zap.Error(err))
		return res, r.recoverSession(ctx, drv, err, log)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn("parsing results page failed", zap.String("performer", name), zap.Error(err))
		return res, nil
	}

	candidates := lookup.ExtractCandidates(doc, r.base)
	decision := lookup.SelectMatch(name, candidates)

	res.Status = decision.Status
	res.Candidates = decision.Candidates
	if decision.Chosen != nil {
		res.MatchedURL = decision.Chosen.Href
		res.MatchedName = decision.Chosen.Label
	}

	if res.Status == domain.StatusMultipleMatches {
		labels := make([]string, 0, len(decision.Candidates))
		for _, c := range decision.Candidates {
			labels = append(labels, util.TruncateString(c.Label, 60))
		}
		log.Info("ambiguous result, provisional first pick",
			zap.String("performer", name),
			zap.Strings("candidates", labels),
		)
	}

	if r.photoDirs != nil && res.Status == domain.StatusFound {
		if err := r.harvestPhoto(ctx, drv, nav, res); err != nil {
			// photo failures never demote a successful lookup
			log.Warn("photo harvest failed",
				zap.String("performer", name),
				zap.Error(err),
			)
			if browser.Classify(err) == browser.KindSessionFatal {
				return res, r.recoverSession(ctx, drv, err, log)
			}
		}
	}

	return res, nil
}

// recoverSession relaunches the worker's session after a fatal
// classification. Non-fatal errors need no recovery. A failed relaunch is
// returned so the worker can retire; the rest of the pool is unaffected.
func (r *Runner) recoverSession(ctx context.Context, drv browser.Driver, cause error, log *zap.Logger) error {
	if ctx.Err() != nil {
		// the run is stopping; a relaunch on a dead context cannot succeed
		return nil
	}
	if browser.Classify(cause) != browser.KindSessionFatal {
		return nil
	}
	log.Warn("session fatal error, relaunching", zap.Error(cause))
	if err := drv.Relaunch(ctx); err != nil {
		return fmt.Errorf("relaunch after fatal error: %w", err)
	}
	log.Info("session relaunched")
	return nil
}

func (r *Runner) searchURL(name string) string {
	return fmt.Sprintf("%s/results.asp?searchtype=comprehensive&searchstring=%s",
		strings.TrimRight(r.base.String(), "/"),
		url.QueryEscape(name),
	)
}

// harvestPhoto visits the matched profile page, picks the best headshot and
// writes it under the configured layout.
func (r *Runner) harvestPhoto(ctx context.Context, drv browser.Driver, nav *lookup.Navigator, res domain.LookupResult) error {
	if res.MatchedURL == "" {
		return fmt.Errorf("no profile url to harvest from")
	}
	if err := nav.Navigate(ctx, res.MatchedURL); err != nil {
		return err
	}

	images, err := drv.Images(ctx)
	if err != nil {
		return err
	}
	best, ok := photo.Pick(images)
	if !ok {
		return fmt.Errorf("no suitable headshot on profile page")
	}

	// best-effort identity hints; the name slug is always a valid fallback
	canonical, err := drv.CanonicalURL(ctx)
	if err != nil {
		canonical = ""
	}
	location, err := drv.Location(ctx)
	if err != nil || location == "" {
		location = res.MatchedURL
	}

	key := photo.ResolveKey(location, canonical, res.MatchedName)
	return r.writer.Harvest(ctx, best.Src, key, r.photoDirs, r.cfg.Photo.Overwrite)
}
