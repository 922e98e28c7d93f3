package stats

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lysyi3m/guide-tools/app/catalog"
)

const translatedPO = `msgid ""
msgstr ""

msgid "one"
msgstr "uno"

msgid "two"
msgstr ""
`

func writeCatalog(t *testing.T, root, locale, module, content string) string {
	t.Helper()
	dir := filepath.Join(root, locale, "LC_MESSAGES")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, module+CatalogExt)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAggregatorRun(t *testing.T) {
	root := t.TempDir()
	for _, locale := range []string{"es", "ja"} {
		for _, module := range []string{"intro", "install"} {
			writeCatalog(t, root, locale, module, translatedPO)
		}
	}
	// Non-catalog files are ignored.
	if err := os.WriteFile(filepath.Join(root, "es", "LC_MESSAGES", "intro.mo"), []byte{0}, 0644); err != nil {
		t.Fatal(err)
	}

	table, err := NewAggregator(root).Run()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(table) != 2 {
		t.Fatalf("Expected 2 locales, got %d", len(table))
	}
	for _, locale := range []string{"es", "ja"} {
		if len(table[locale]) != 2 {
			t.Errorf("Expected 2 modules for %s, got %d", locale, len(table[locale]))
		}
		stats := table[locale]["intro"]
		if stats.Total != 2 || stats.Translated != 1 || stats.Percentage != 50 {
			t.Errorf("Unexpected stats for %s/intro: %+v", locale, stats)
		}
	}

	if got := table.Locales(); !reflect.DeepEqual(got, []string{"es", "ja"}) {
		t.Errorf("Expected sorted locales [es ja], got %v", got)
	}
	if got := table.Modules("es"); !reflect.DeepEqual(got, []string{"install", "intro"}) {
		t.Errorf("Expected sorted modules [install intro], got %v", got)
	}
}

func TestAggregatorMissingDirectory(t *testing.T) {
	table, err := NewAggregator(filepath.Join(t.TempDir(), "nope")).Run()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("Expected empty table, got %v", table)
	}
}

func TestAggregatorMalformedCatalog(t *testing.T) {
	root := t.TempDir()
	writeCatalog(t, root, "es", "intro", translatedPO)
	path := writeCatalog(t, root, "es", "broken", "msgid \"x\"\n")

	_, err := NewAggregator(root).Run()
	if err == nil {
		t.Fatal("Expected error for malformed catalog")
	}

	var syntaxErr *catalog.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("Expected wrapped *catalog.SyntaxError, got %T", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("Expected error to mention %s, got %v", path, err)
	}
}

func TestPublishAndLoadRoundTrip(t *testing.T) {
	outDir := t.TempDir()
	table := Table{
		"es": {
			"intro":   {Total: 10, Translated: 5, Fuzzy: 1, Untranslated: 4, Percentage: 50},
			"install": {Total: 3, Translated: 1, Untranslated: 2, Percentage: 33.33},
		},
		"ja": {
			"intro": {Total: 10, Translated: 9, Untranslated: 1, Percentage: 90},
		},
	}

	path, err := NewPublisher(outDir).Run(table, HTMLBuilder)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if path != filepath.Join(outDir, "_static", "translation_stats.json") {
		t.Errorf("Unexpected output path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"es\": {\n    \"install\": {\n      \"total\": 3,") {
		t.Errorf("Expected 2-space indented JSON, got:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error loading, got: %v", err)
	}
	if !reflect.DeepEqual(loaded, table) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", table, loaded)
	}
}

func TestPublisherSkipsNonHTMLBuilder(t *testing.T) {
	outDir := t.TempDir()
	table := Table{"es": {"intro": {Total: 1, Translated: 1, Percentage: 100}}}

	path, err := NewPublisher(outDir).Run(table, "latex")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if path != "" {
		t.Errorf("Expected empty path, got %s", path)
	}
	if _, err := os.Stat(Path(outDir)); !os.IsNotExist(err) {
		t.Error("Expected no stats file for non-HTML builder")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		empty   bool
	}{
		{"empty file", "", true},
		{"empty object", "{}", true},
		{"wrong shape", `{"es": [1, 2]}`, false},
		{"unknown field", `{"es": {"intro": {"total": 1, "done": true}}}`, false},
		{"null locale", `{"es": null}`, false},
		{"missing fields", `{"es": {"intro": {"total": 5}}}`, false},
		{"missing percentage", `{"es": {"intro": {"total": 1, "translated": 1, "fuzzy": 0, "untranslated": 0}}}`, false},
		{"null record", `{"es": {"intro": null}}`, false},
		{"counts do not add up", `{"es": {"intro": {"total": 5, "translated": 1, "fuzzy": 0, "untranslated": 0, "percentage": 20}}}`, false},
		{"negative count", `{"es": {"intro": {"total": 0, "translated": 1, "fuzzy": 0, "untranslated": -1, "percentage": 0}}}`, false},
		{"percentage out of range", `{"es": {"intro": {"total": 1, "translated": 1, "fuzzy": 0, "untranslated": 0, "percentage": 150}}}`, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Expected error")
			}
			if errors.Is(err, ErrEmpty) != test.empty {
				t.Errorf("errors.Is(err, ErrEmpty) = %v, want %v (%v)", errors.Is(err, ErrEmpty), test.empty, err)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("Expected error to name %s, got %v", path, err)
			}
		})
	}
}

func TestTableMean(t *testing.T) {
	table := Table{"es": {"a": {Percentage: 50}, "b": {Percentage: 100}}}
	if got := table.Mean("es"); got != 75 {
		t.Errorf("Expected mean 75, got %v", got)
	}
	if got := table.Mean("fr"); got != 0 {
		t.Errorf("Expected mean 0 for unknown locale, got %v", got)
	}
}
