package stats

import (
	"sort"

	"github.com/lysyi3m/guide-tools/app/catalog"
)

const (
	CatalogExt = ".po"
	StaticDir  = "_static"
	FileName   = "translation_stats.json"
)

// Table maps locale code to module name to coverage stats.
type Table map[string]map[string]catalog.Stats

func (t Table) Set(locale, module string, stats catalog.Stats) {
	if _, ok := t[locale]; !ok {
		t[locale] = make(map[string]catalog.Stats)
	}
	t[locale][module] = stats
}

func (t Table) Locales() []string {
	locales := make([]string, 0, len(t))
	for locale := range t {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

func (t Table) Modules(locale string) []string {
	modules := make([]string, 0, len(t[locale]))
	for module := range t[locale] {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Len returns the number of (locale, module) cells.
func (t Table) Len() int {
	n := 0
	for _, modules := range t {
		n += len(modules)
	}
	return n
}

// Mean returns the average completion percentage of a locale.
func (t Table) Mean(locale string) float64 {
	modules := t[locale]
	if len(modules) == 0 {
		return 0
	}
	var sum float64
	for _, s := range modules {
		sum += s.Percentage
	}
	return sum / float64(len(modules))
}
