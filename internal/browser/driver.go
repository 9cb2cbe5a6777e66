package browser

import (
	"context"
	"time"

	"github.com/jb-miles/castscout/internal/domain"
)

// Driver is the narrow capability surface the lookup and photo pipelines
// need from a browser session. Detection and extraction logic is written
// against this interface so it can run against fixtures without a real
// devtools connection.
type Driver interface {
	// Navigate loads url and waits for the document body, bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Reload re-requests the current page, bounded by timeout.
	Reload(ctx context.Context, timeout time.Duration) error
	// Title returns the document title of the loaded page.
	Title(ctx context.Context) (string, error)
	// BodyText returns the visible text of the document body.
	BodyText(ctx context.Context) (string, error)
	// HTML returns the full serialized document.
	HTML(ctx context.Context) (string, error)
	// Images returns every image element with its rendered dimensions.
	Images(ctx context.Context) ([]domain.PhotoCandidate, error)
	// CanonicalURL returns the page's canonical-URL hint, or "" if absent.
	CanonicalURL(ctx context.Context) (string, error)
	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)
	// Relaunch tears the session down and brings up a fresh one.
	Relaunch(ctx context.Context) error
	// Close releases the session.
	Close() error
}
