package export

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/config"
	"github.com/jb-miles/castscout/internal/constants"
	"github.com/jb-miles/castscout/internal/util"
)

// Exporter walks a media server's library sections, tallies how many items
// each credited actor appears in, and emits the deduplicated name list the
// lookup engine consumes. Progress survives interruption through its own
// JSON checkpoint, persisted after every page.
type Exporter struct {
	client   *resty.Client
	logger   *zap.Logger
	cfg      config.ExportConfig
	pageSize int
}

type mediaContainer struct {
	MediaContainer struct {
		Size      int `json:"size"`
		TotalSize int `json:"totalSize"`
		Directory []struct {
			Key   string `json:"key"`
			Type  string `json:"type"`
			Title string `json:"title"`
		} `json:"Directory"`
		Metadata []struct {
			Role []struct {
				Tag string `json:"tag"`
			} `json:"Role"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}

func NewExporter(cfg config.ExportConfig, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New()
	client.SetBaseURL(cfg.ServerURL)
	client.SetTimeout(constants.ExportConfig.RequestTimeout)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("X-Plex-Token", cfg.Token)
	return &Exporter{
		client:   client,
		logger:   logger,
		cfg:      cfg,
		pageSize: constants.ExportConfig.PageSize,
	}
}

// Run exports every movie and show section, resuming from the checkpoint.
func (e *Exporter) Run(ctx context.Context) error {
	cp, err := LoadCheckpoint(e.cfg.CheckpointPath)
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}

	sections, err := e.sections(ctx)
	if err != nil {
		return fmt.Errorf("listing sections: %w", err)
	}

	for _, key := range sections {
		if cp.SectionDone(key) {
			e.logger.Info("section already exported", zap.String("section", key))
			continue
		}
		if err := e.exportSection(ctx, cp, key); err != nil {
			return fmt.Errorf("exporting section %s: %w", key, err)
		}
		cp.CompletedSections = append(cp.CompletedSections, key)
		if err := cp.Save(e.cfg.CheckpointPath); err != nil {
			return fmt.Errorf("saving checkpoint: %w", err)
		}
	}

	if err := e.writeNames(cp); err != nil {
		return fmt.Errorf("writing name list: %w", err)
	}
	e.logger.Info("export complete",
		zap.Int("actors", len(cp.Counts)),
		zap.String("output", e.cfg.OutputPath),
	)
	return nil
}

func (e *Exporter) sections(ctx context.Context) ([]string, error) {
	var mc mediaContainer
	resp, err := e.client.R().
		SetContext(ctx).
		SetResult(&mc).
		Get("/library/sections")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var keys []string
	for _, dir := range mc.MediaContainer.Directory {
		if dir.Type == "movie" || dir.Type == "show" {
			keys = append(keys, dir.Key)
		}
	}
	return keys, nil
}

func (e *Exporter) exportSection(ctx context.Context, cp *Checkpoint, key string) error {
	offset := cp.SectionOffsets[key]
	for {
		var mc mediaContainer
		resp, err := e.client.R().
			SetContext(ctx).
			SetResult(&mc).
			SetQueryParam("X-Plex-Container-Start", strconv.Itoa(offset)).
			SetQueryParam("X-Plex-Container-Size", strconv.Itoa(e.pageSize)).
			Get(fmt.Sprintf("/library/sections/%s/all", key))
		if err != nil {
			return err
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("unexpected status %d at offset %d", resp.StatusCode(), offset)
		}

		items := mc.MediaContainer.Metadata
		for _, item := range items {
			for _, role := range item.Role {
				name := strings.TrimSpace(role.Tag)
				if name == "" {
					continue
				}
				cp.Counts[name]++
			}
		}
		offset += len(items)
		cp.SectionOffsets[key] = offset
		if err := cp.Save(e.cfg.CheckpointPath); err != nil {
			return err
		}

		e.logger.Info("page exported",
			zap.String("section", key),
			zap.Int("offset", offset),
			zap.Int("total", mc.MediaContainer.TotalSize),
			zap.Int("actors_so_far", len(cp.Counts)),
		)

		if len(items) < e.pageSize || (mc.MediaContainer.TotalSize > 0 && offset >= mc.MediaContainer.TotalSize) {
			return nil
		}
		if err := util.SleepContext(ctx, constants.ExportConfig.PageDelay); err != nil {
			return err
		}
	}
}

// writeNames emits one name per line, most-credited first so the lookup run
// works through the names most likely to matter before any interruption.
func (e *Exporter) writeNames(cp *Checkpoint) error {
	names := make([]string, 0, len(cp.Counts))
	for name := range cp.Counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if cp.Counts[names[i]] != cp.Counts[names[j]] {
			return cp.Counts[names[i]] > cp.Counts[names[j]]
		}
		return names[i] < names[j]
	})
	return util.WriteFileAtomic(e.cfg.OutputPath, []byte(strings.Join(names, "\n")+"\n"))
}
