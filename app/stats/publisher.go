package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/lysyi3m/guide-tools/app/atomicfile"
	"github.com/lysyi3m/guide-tools/app/catalog"
)

const HTMLBuilder = "html"

var ErrEmpty = errors.New("translation stats document is empty")

type Publisher struct {
	outDir string
}

func NewPublisher(outDir string) *Publisher {
	return &Publisher{outDir: outDir}
}

func (p *Publisher) Path() string {
	return Path(p.outDir)
}

// Path returns the location of the stats document inside a build output directory.
func Path(outDir string) string {
	return filepath.Join(outDir, StaticDir, FileName)
}

// Run writes the table for HTML builds and returns the written path. Other
// builders are skipped and an empty path is returned.
func (p *Publisher) Run(table Table, builder string) (string, error) {
	if builder != HTMLBuilder {
		slog.Info("Skipping translation stats, not an HTML build", "builder", builder)
		return "", nil
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode translation stats: %w", err)
	}

	path := p.Path()
	if err := atomicfile.Write(path, data); err != nil {
		return "", fmt.Errorf("failed to write translation stats: %w", err)
	}

	slog.Info("Translation stats published", "path", path, "locales", len(table), "catalogs", table.Len())
	return path, nil
}

// Load reads a stats document written by Publisher.Run.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation stats: %w", err)
	}
	return Decode(bytes.NewReader(data), path)
}

// Decode parses a stats document. Unknown fields, missing fields and records
// whose counts do not add up are rejected so a document of the wrong shape
// fails instead of decoding to zero values.
func Decode(r io.Reader, name string) (Table, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var raw map[string]map[string]record
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
		}
		return nil, fmt.Errorf("%s: invalid translation stats document: %w", name, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}

	table := make(Table, len(raw))
	for _, locale := range slices.Sorted(maps.Keys(raw)) {
		modules := raw[locale]
		if modules == nil {
			return nil, fmt.Errorf("%s: locale %q has no module map", name, locale)
		}
		table[locale] = make(map[string]catalog.Stats, len(modules))
		for _, module := range slices.Sorted(maps.Keys(modules)) {
			s, err := modules[module].stats()
			if err != nil {
				return nil, fmt.Errorf("%s: invalid record %s/%s: %w", name, locale, module, err)
			}
			table[locale][module] = s
		}
	}

	return table, nil
}

// record is the on-disk form of catalog.Stats. Pointer fields tell a missing
// key apart from a zero count.
type record struct {
	Total        *int     `json:"total"`
	Translated   *int     `json:"translated"`
	Fuzzy        *int     `json:"fuzzy"`
	Untranslated *int     `json:"untranslated"`
	Percentage   *float64 `json:"percentage"`
}

func (r record) stats() (catalog.Stats, error) {
	for _, field := range []struct {
		name string
		set  bool
	}{
		{"total", r.Total != nil},
		{"translated", r.Translated != nil},
		{"fuzzy", r.Fuzzy != nil},
		{"untranslated", r.Untranslated != nil},
		{"percentage", r.Percentage != nil},
	} {
		if !field.set {
			return catalog.Stats{}, fmt.Errorf("missing field %q", field.name)
		}
	}

	s := catalog.Stats{
		Total:        *r.Total,
		Translated:   *r.Translated,
		Fuzzy:        *r.Fuzzy,
		Untranslated: *r.Untranslated,
		Percentage:   *r.Percentage,
	}

	switch {
	case s.Total < 0 || s.Translated < 0 || s.Fuzzy < 0 || s.Untranslated < 0:
		return s, errors.New("negative count")
	case s.Total != s.Translated+s.Fuzzy+s.Untranslated:
		return s, fmt.Errorf("total %d does not equal translated+fuzzy+untranslated (%d+%d+%d)",
			s.Total, s.Translated, s.Fuzzy, s.Untranslated)
	case s.Percentage < 0 || s.Percentage > 100:
		return s, fmt.Errorf("percentage %v out of range", s.Percentage)
	}

	return s, nil
}
