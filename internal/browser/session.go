package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	fakeua "github.com/EDDYCJY/fake-useragent"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/domain"
)

// State is the lifecycle state of a browser session.
type State string

const (
	StateClosed    State = "CLOSED"
	StateLaunching State = "LAUNCHING"
	StateReady     State = "READY"
	StateCrashed   State = "CRASHED"
)

// Session owns one headless Chrome instance and its page context. Exactly one
// worker owns a Session; it is passed explicitly, never kept as a global.
type Session struct {
	id        int
	headless  bool
	userAgent string
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// NewSession creates a session in the CLOSED state. Call Launch before use.
func NewSession(id int, headless bool, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:        id,
		headless:  headless,
		userAgent: fakeua.Chrome(),
		logger:    logger.With(zap.Int("session", id)),
		state:     StateClosed,
	}
}

// Launch starts Chrome and opens the page context. Ready is the only state
// from which work may be dispatched.
func (s *Session) Launch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launchLocked(ctx)
}

func (s *Session) launchLocked(ctx context.Context) error {
	if s.state == StateReady {
		return nil
	}
	s.transition(StateLaunching)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(s.userAgent),
	)
	if p := os.Getenv("CHROME_PATH"); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		tabCancel()
		allocCancel()
		s.transition(StateClosed)
		return fmt.Errorf("launching chrome: %w", err)
	}

	s.allocCancel = allocCancel
	s.tabCtx = tabCtx
	s.tabCancel = tabCancel
	s.transition(StateReady)
	return nil
}

// Relaunch performs a full close-then-launch cycle. Used by workers after a
// SessionFatal classification; other workers are unaffected.
func (s *Session) Relaunch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(StateCrashed)
	s.closeLocked()
	return s.launchLocked(ctx)
}

// Close shuts the browser down. Safe to call from any state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *Session) closeLocked() {
	if s.tabCancel != nil {
		s.tabCancel()
		s.tabCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.tabCtx = nil
	s.transition(StateClosed)
}

func (s *Session) transition(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("session state",
		zap.String("from", string(s.state)),
		zap.String("to", string(next)),
	)
	s.state = next
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) page() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.tabCtx == nil {
		return nil, fmt.Errorf("session %d not ready (state %s)", s.id, s.state)
	}
	return s.tabCtx, nil
}

func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tab, err := s.page()
	if err != nil {
		return err
	}
	// Bound the operation without tearing down the tab: the deadline lives
	// on a child of the tab context.
	runCtx := tab
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(tab, timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Navigate implements Driver.
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Reload implements Driver.
func (s *Session) Reload(ctx context.Context, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Title implements Driver.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	err := s.run(ctx, 10*time.Second, chromedp.Title(&title))
	return title, err
}

// BodyText implements Driver.
func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, 10*time.Second, chromedp.Text("body", &text, chromedp.ByQuery))
	return text, err
}

// HTML implements Driver.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, 10*time.Second, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Images implements Driver. Dimensions come from the rendered layout, with
// naturalWidth/naturalHeight as fallback for images styled to zero.
func (s *Session) Images(ctx context.Context) ([]domain.PhotoCandidate, error) {
	const script = `Array.from(document.images).map(img => ({
		src: img.currentSrc || img.src || "",
		alt: img.alt || "",
		width: img.width || img.naturalWidth || 0,
		height: img.height || img.naturalHeight || 0,
	}))`
	var raw []struct {
		Src    string `json:"src"`
		Alt    string `json:"alt"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	if err := s.run(ctx, 10*time.Second, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, err
	}
	images := make([]domain.PhotoCandidate, 0, len(raw))
	for _, r := range raw {
		images = append(images, domain.PhotoCandidate{Src: r.Src, Alt: r.Alt, Width: r.Width, Height: r.Height})
	}
	return images, nil
}

// CanonicalURL implements Driver.
func (s *Session) CanonicalURL(ctx context.Context) (string, error) {
	const script = `(() => {
		const link = document.querySelector('link[rel="canonical"]');
		if (link && link.href) return link.href;
		const og = document.querySelector('meta[property="og:url"]');
		if (og && og.content) return og.content;
		return "";
	})()`
	var href string
	err := s.run(ctx, 10*time.Second, chromedp.Evaluate(script, &href))
	return href, err
}

// Location implements Driver.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, 10*time.Second, chromedp.Location(&loc))
	return loc, err
}

var _ Driver = (*Session)(nil)
