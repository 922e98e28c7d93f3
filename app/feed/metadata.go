package feed

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"
)

// LoadManifest reads page metadata from a YAML document keyed by page name:
//
//	tutorials/intro:
//	  ":og:title": Intro
//	  ":og:description": Get started
//	  date: 2024-06-01
func LoadManifest(path string) (map[string]Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata manifest: %w", err)
	}

	pages := make(map[string]Metadata)
	if err := yaml.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse metadata manifest %s: %w", path, err)
	}

	for name, meta := range pages {
		if meta == nil {
			pages[name] = Metadata{}
		}
	}

	slog.Debug("Metadata manifest loaded", "path", path, "pages", len(pages))
	return pages, nil
}

// ScanHTML collects page metadata from built HTML pages under outDir. The
// page name is the path relative to outDir without the .html extension.
// Directories starting with an underscore hold build assets and are skipped.
func ScanHTML(outDir string) (map[string]Metadata, error) {
	pages := make(map[string]Metadata)

	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != outDir && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".html" {
			return nil
		}

		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".html")

		meta, err := scanPage(path)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
		pages[name] = meta
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("HTML pages scanned", "dir", outDir, "pages", len(pages))
	return pages, nil
}

func scanPage(path string) (Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, err
	}

	meta := Metadata{}
	selectors := map[string]string{
		KeyTitle:       "meta[property='og:title']",
		KeyDescription: "meta[property='og:description']",
		KeyAuthor:      "meta[property='og:author']",
		KeyDate:        "meta[name='date']",
	}
	for key, selector := range selectors {
		if content, exists := doc.Find(selector).First().Attr("content"); exists {
			meta[key] = content
		}
	}

	return meta, nil
}
