package stats

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lysyi3m/guide-tools/app/catalog"
)

type Aggregator struct {
	localesDir string
}

func NewAggregator(localesDir string) *Aggregator {
	return &Aggregator{localesDir: localesDir}
}

// Run computes stats for every catalog under the locales directory. Catalogs
// are expected at <locale>/LC_MESSAGES/<module>.po; the locale is the name of
// the catalog's grandparent directory.
func (a *Aggregator) Run() (Table, error) {
	table := make(Table)

	if _, err := os.Stat(a.localesDir); os.IsNotExist(err) {
		slog.Warn("Locales directory not found", "path", a.localesDir)
		return table, nil
	}

	err := filepath.WalkDir(a.localesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != CatalogExt {
			return nil
		}

		locale := filepath.Base(filepath.Dir(filepath.Dir(path)))
		module := strings.TrimSuffix(d.Name(), CatalogExt)

		stats, err := catalog.CalculateFile(path, locale)
		if err != nil {
			return fmt.Errorf("failed to calculate stats for %s: %w", path, err)
		}

		slog.Info("Catalog processed",
			"locale", locale,
			"module", module,
			"percentage", stats.Percentage,
			"translated", stats.Translated,
			"total", stats.Total)

		table.Set(locale, module, stats)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}
