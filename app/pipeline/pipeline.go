package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lysyi3m/guide-tools/app/atomicfile"
	"github.com/lysyi3m/guide-tools/app/cfg"
	"github.com/lysyi3m/guide-tools/app/database"
	"github.com/lysyi3m/guide-tools/app/feed"
	"github.com/lysyi3m/guide-tools/app/heatmap"
	"github.com/lysyi3m/guide-tools/app/site"
	"github.com/lysyi3m/guide-tools/app/stats"
)

// GraphFile is the rendered heatmap fragment written next to the stats document.
const GraphFile = "translation_graph.html"

type Pipeline struct {
	cfg     *cfg.Cfg
	site    *site.Config
	history database.HistoryStore
	now     func() time.Time
}

// New creates a pipeline. history may be nil to disable run recording.
func New(c *cfg.Cfg, s *site.Config, history database.HistoryStore) *Pipeline {
	return &Pipeline{
		cfg:     c,
		site:    s,
		history: history,
		now:     time.Now,
	}
}

// Stats aggregates the locales tree, publishes the stats document for HTML
// builds and records the run in the history store. History failures are
// logged and do not fail the step.
func (p *Pipeline) Stats(ctx context.Context) (stats.Table, error) {
	startedAt := p.now()

	table, err := stats.NewAggregator(p.cfg.LocalesDir).Run()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate translation stats: %w", err)
	}

	for _, locale := range table.Locales() {
		if !p.site.HasLanguage(locale) {
			slog.Warn("Catalogs found for unconfigured language", "locale", locale)
		}
	}

	if _, err := stats.NewPublisher(p.cfg.OutDir).Run(table, p.cfg.Builder); err != nil {
		return nil, err
	}

	if p.history != nil && len(table) > 0 {
		runID, err := p.history.RecordRun(ctx, startedAt, table)
		if err != nil {
			slog.Warn("Failed to record stats history", "error", err)
		} else {
			slog.Debug("Stats history recorded", "run_id", runID)
		}
	}

	return table, nil
}

// Feed collects page metadata, renders the tutorials feed, verifies it and
// writes it to the output directory. It returns the written path.
func (p *Pipeline) Feed(ctx context.Context) (string, error) {
	pages, err := p.pages()
	if err != nil {
		return "", err
	}

	items, err := feed.NewBuilder(p.site.BaseURL, p.site.Feed.Section).
		WithAuthor(p.site.Feed.Author).
		Items(pages)
	if err != nil {
		return "", fmt.Errorf("failed to build feed items: %w", err)
	}

	doc, err := feed.NewGenerator().Run(feed.Feed{
		Channel: p.Channel(),
		Items:   items,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate feed: %w", err)
	}

	count, err := feed.Verify(doc)
	if err != nil {
		return "", fmt.Errorf("failed to verify feed: %w", err)
	}

	path := filepath.Join(p.cfg.OutDir, feed.FileName)
	if err := feed.Write(path, doc); err != nil {
		return "", err
	}

	slog.Info("Generated tutorials feed", "path", path, "items", count)
	return path, nil
}

// Build runs the end-of-build steps: stats first, then the feed.
func (p *Pipeline) Build(ctx context.Context) error {
	if _, err := p.Stats(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.Feed(ctx); err != nil {
		return err
	}
	return nil
}

// Graph renders the heatmap fragment from the published stats document and
// writes it next to it.
func (p *Pipeline) Graph(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := heatmap.NewRenderer().RenderFile(&buf, stats.Path(p.cfg.OutDir)); err != nil {
		return "", fmt.Errorf("failed to render translation graph: %w", err)
	}

	path := filepath.Join(p.cfg.OutDir, stats.StaticDir, GraphFile)
	if err := atomicfile.Write(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write translation graph: %w", err)
	}

	slog.Info("Translation graph rendered", "path", path)
	return path, nil
}

func (p *Pipeline) Channel() feed.Channel {
	return feed.Channel{
		Title:         p.site.Feed.Title,
		Link:          p.site.Feed.Link,
		SelfLink:      p.site.Feed.SelfLink,
		Description:   p.site.Feed.Description,
		Language:      p.site.Feed.Language,
		LastBuildDate: p.now().UTC(),
	}
}

func (p *Pipeline) pages() (map[string]feed.Metadata, error) {
	if p.cfg.Metadata != "" {
		return feed.LoadManifest(p.cfg.Metadata)
	}

	pages, err := feed.ScanHTML(p.cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to collect page metadata: %w", err)
	}
	return pages, nil
}
