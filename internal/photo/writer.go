package photo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	fakeua "github.com/EDDYCJY/fake-useragent"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/constants"
	"github.com/jb-miles/castscout/internal/util"
)

// Writer downloads a selected image and writes it into the destination
// folders. Writes are temp-file-plus-rename so a destination file is never
// observed half-written.
type Writer struct {
	client *resty.Client
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New()
	client.SetTimeout(constants.PhotoConfig.FetchTimeout)
	client.SetHeader("User-Agent", fakeua.Chrome())
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	return &Writer{client: client, logger: logger}
}

// DestinationDirs maps the configured photo kind to the poster/face layout
// under root.
func DestinationDirs(cfg config.PhotoConfig) []string {
	switch cfg.Kind {
	case config.PhotoKindPoster:
		return []string{filepath.Join(cfg.Root, "poster")}
	case config.PhotoKindFace:
		return []string{filepath.Join(cfg.Root, "face")}
	default:
		return []string{
			filepath.Join(cfg.Root, "poster"),
			filepath.Join(cfg.Root, "face"),
		}
	}
}

// Harvest fetches imageURL and writes {key}{ext} into every destination dir.
// A non-success fetch status is a hard failure for this performer; existing
// files are skipped unless overwrite is set. At most one write attempt per
// destination per run.
func (w *Writer) Harvest(ctx context.Context, imageURL, key string, dirs []string, overwrite bool) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating photo dir %s: %w", dir, err)
		}
	}

	resp, err := w.client.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return fmt.Errorf("fetching image: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("fetching image: unexpected status %d", resp.StatusCode())
	}

	ext := extensionFor(resp.Header().Get("Content-Type"))
	data := resp.Body()

	for _, dir := range dirs {
		target := filepath.Join(dir, key+ext)
		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				w.logger.Info("photo exists, skipping",
					zap.String("path", target),
				)
				continue
			}
		}
		if err := util.WriteFileAtomic(target, data); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		w.logger.Info("photo written",
			zap.String("path", target),
			zap.Int("bytes", len(data)),
		)
	}
	return nil
}

// extensionFor picks a file extension from the declared content type.
// Unknown types default to jpeg.
func extensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "webp"):
		return ".webp"
	case strings.Contains(ct, "gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}
