package catalog

import (
	"math"
)

// Calculate counts the translatable entries of one catalog.
//
// Processing stops at the first fuzzy entry: entries after it are not
// counted at all. Untranslated is always derived from the other counts so
// Total == Translated + Fuzzy + Untranslated holds.
func Calculate(entries []Entry) Stats {
	var stats Stats

	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}

		stats.Total++
		if entry.Fuzzy {
			stats.Fuzzy++
			break
		}
		if entry.Translated() {
			stats.Translated++
		}
	}

	stats.Untranslated = stats.Total - stats.Translated - stats.Fuzzy
	if stats.Total > 0 {
		stats.Percentage = round2(float64(stats.Translated) / float64(stats.Total) * 100)
	}

	return stats
}

func CalculateFile(path, locale string) (Stats, error) {
	entries, err := ParseFile(path, locale)
	if err != nil {
		return Stats{}, err
	}
	return Calculate(entries), nil
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
