package heatmap

import (
	"errors"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/lysyi3m/guide-tools/app/catalog"
	"github.com/lysyi3m/guide-tools/app/stats"
)

// ReferenceLocale is the source language of the guide, shown as fully translated.
const ReferenceLocale = "en"

var ErrNoStats = errors.New("no translation stats to render")

var englishNames = display.Tags(language.English)

type Cell struct {
	Module  string
	Stats   catalog.Stats
	HasData bool
}

type Row struct {
	Locale string
	Name   string // English display name, empty for unknown codes
	Mean   float64
	Cells  []Cell
}

// Grid is the locale x module matrix in display order.
type Grid struct {
	Modules []string
	Rows    []Row
}

func (g *Grid) Locales() []string {
	locales := make([]string, len(g.Rows))
	for i, row := range g.Rows {
		locales[i] = row.Locale
	}
	return locales
}

// WithReference returns a copy of table with a synthetic reference locale
// built from the modules of the alphabetically first locale. Every reference
// cell reports 100% and copies the module total into translated and fuzzy.
// A table that already carries the reference locale is copied unchanged.
func WithReference(table stats.Table) stats.Table {
	out := make(stats.Table, len(table)+1)
	for locale, modules := range table {
		out[locale] = make(map[string]catalog.Stats, len(modules))
		for module, s := range modules {
			out[locale][module] = s
		}
	}

	if _, ok := table[ReferenceLocale]; ok {
		return out
	}

	reference := make(map[string]catalog.Stats)
	if locales := table.Locales(); len(locales) > 0 {
		for module, s := range table[locales[0]] {
			reference[module] = catalog.Stats{
				Total:        s.Total,
				Translated:   s.Total,
				Fuzzy:        s.Total,
				Untranslated: 0,
				Percentage:   100,
			}
		}
	}
	out[ReferenceLocale] = reference

	return out
}

// BuildGrid orders locales by mean completion, highest first, with the
// reference locale leading ties. Columns are the sorted union of all modules;
// a locale without a catalog for a module gets an empty cell.
func BuildGrid(table stats.Table) (*Grid, error) {
	if len(table) == 0 {
		return nil, ErrNoStats
	}

	full := WithReference(table)

	order := []string{ReferenceLocale}
	for _, locale := range full.Locales() {
		if locale != ReferenceLocale {
			order = append(order, locale)
		}
	}

	moduleSet := make(map[string]struct{})
	for _, modules := range full {
		for module := range modules {
			moduleSet[module] = struct{}{}
		}
	}
	modules := make([]string, 0, len(moduleSet))
	for module := range moduleSet {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	rows := make([]Row, 0, len(order))
	for _, locale := range order {
		row := Row{
			Locale: locale,
			Name:   displayName(locale),
			Mean:   full.Mean(locale),
			Cells:  make([]Cell, 0, len(modules)),
		}
		for _, module := range modules {
			s, ok := full[locale][module]
			row.Cells = append(row.Cells, Cell{Module: module, Stats: s, HasData: ok})
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Mean > rows[j].Mean
	})

	return &Grid{Modules: modules, Rows: rows}, nil
}

func displayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return englishNames.Name(tag)
}
