package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/browser"
	"github.com/jb-miles/castscout/internal/constants"
	"github.com/jb-miles/castscout/internal/util"
)

// ErrChallengePersisted means the site kept serving a verification page after
// every allowed reload. The item is recorded as an error; no escalation.
var ErrChallengePersisted = errors.New("challenge page persisted after retries")

// Navigator drives one session to a URL with two separate retry ladders:
// a timeout retry that widens the budget for slow responses, and a challenge
// retry that waits a fixed delay for an anti-automation gate to clear.
// The two are deliberately not conflated.
type Navigator struct {
	driver  browser.Driver
	logger  *zap.Logger
	timeout time.Duration

	challengeWait     time.Duration
	challengeAttempts int
}

func NewNavigator(driver browser.Driver, timeout time.Duration, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = constants.NavigationConfig.DefaultTimeout
	}
	return &Navigator{
		driver:            driver,
		logger:            logger,
		timeout:           timeout,
		challengeWait:     constants.ChallengeConfig.RetryDelay,
		challengeAttempts: constants.ChallengeConfig.MaxAttempts,
	}
}

// Navigate loads url, retrying once with a doubled timeout on a
// timeout-classified failure, then waits out any challenge page.
func (n *Navigator) Navigate(ctx context.Context, url string) error {
	timeout := n.timeout
	if err := n.driver.Navigate(ctx, url, timeout); err != nil {
		if browser.Classify(err) != browser.KindTimeout {
			return err
		}
		timeout = min(2*timeout, constants.NavigationConfig.MaxTimeout)
		n.logger.Warn("navigation timed out, retrying with doubled budget",
			zap.String("url", url),
			zap.Duration("timeout", timeout),
		)
		if err := n.driver.Navigate(ctx, url, timeout); err != nil {
			return fmt.Errorf("navigation failed after timeout retry: %w", err)
		}
	}
	return n.awaitChallengeClear(ctx, url, timeout)
}

func (n *Navigator) awaitChallengeClear(ctx context.Context, url string, timeout time.Duration) error {
	for attempt := 1; attempt <= n.challengeAttempts; attempt++ {
		if !n.challenged(ctx) {
			return nil
		}
		if attempt == n.challengeAttempts {
			break
		}
		n.logger.Info("challenge page detected, waiting before reload",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", n.challengeWait),
		)
		if err := util.SleepContext(ctx, n.challengeWait); err != nil {
			return err
		}
		if err := n.driver.Reload(ctx, timeout); err != nil {
			return fmt.Errorf("reload during challenge retry: %w", err)
		}
	}
	return ErrChallengePersisted
}

// challenged inspects the freshly loaded page; extraction failures are
// treated as empty strings rather than errors.
func (n *Navigator) challenged(ctx context.Context) bool {
	title, err := n.driver.Title(ctx)
	if err != nil {
		title = ""
	}
	body, err := n.driver.BodyText(ctx)
	if err != nil {
		body = ""
	}
	return IsChallengePage(title, body)
}
