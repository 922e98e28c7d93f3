package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/guide-tools/app/cfg"
	"github.com/lysyi3m/guide-tools/app/database"
	"github.com/lysyi3m/guide-tools/app/feed"
	"github.com/lysyi3m/guide-tools/app/site"
	"github.com/lysyi3m/guide-tools/app/stats"
)

const halfTranslatedPO = `msgid ""
msgstr ""

msgid "Hello"
msgstr "Hola"

msgid "World"
msgstr ""
`

const manifest = `tutorials/intro:
  ":og:title": Intro
  ":og:description": Get started
  date: 2024-01-01
tutorials/publish:
  ":og:title": Publish
  ":og:description": Ship it
  date: 2024-06-01
index:
  ":og:title": Home
`

type failingHistory struct {
	database.HistoryStore
	calls int
}

func (f *failingHistory) RecordRun(ctx context.Context, startedAt time.Time, table stats.Table) (int64, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func setupProject(t *testing.T) *cfg.Cfg {
	t.Helper()
	root := t.TempDir()
	for _, locale := range []string{"es", "ja"} {
		writeFile(t, filepath.Join(root, "locales", locale, "LC_MESSAGES", "intro.po"), halfTranslatedPO)
	}
	writeFile(t, filepath.Join(root, "metadata.yml"), manifest)

	return &cfg.Cfg{
		Command:         "build",
		SourceDir:       root,
		LocalesDir:      filepath.Join(root, "locales"),
		OutDir:          filepath.Join(root, "_build", "html"),
		Builder:         stats.HTMLBuilder,
		Metadata:        filepath.Join(root, "metadata.yml"),
		RebuildInterval: 30,
		WorkerCount:     1,
	}
}

func TestBuild(t *testing.T) {
	c := setupProject(t)
	db, err := database.Open(filepath.Join(c.SourceDir, "_build", "stats.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := database.NewStatsRepository(db)

	if err := New(c, site.Default(), repo).Build(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	table, err := stats.Load(stats.Path(c.OutDir))
	if err != nil {
		t.Fatalf("Expected stats document, got: %v", err)
	}
	if table["es"]["intro"].Percentage != 50 || table["ja"]["intro"].Percentage != 50 {
		t.Errorf("Unexpected stats %+v", table)
	}

	data, err := os.ReadFile(filepath.Join(c.OutDir, feed.FileName))
	if err != nil {
		t.Fatalf("Expected feed file, got: %v", err)
	}
	rss := string(data)
	if strings.Count(rss, "<item>") != 2 {
		t.Errorf("Expected 2 tutorial items, got:\n%s", rss)
	}
	if strings.Index(rss, "<title>Publish</title>") > strings.Index(rss, "<title>Intro</title>") {
		t.Error("Expected newest tutorial first")
	}
	if !strings.Contains(rss, "<link>https://www.pyopensci.org/python-package-guide/tutorials/intro.html</link>") {
		t.Error("Expected item URL resolved against base URL")
	}

	runs, err := repo.LatestRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Catalogs != 2 {
		t.Errorf("Expected one recorded run with 2 catalogs, got %+v", runs)
	}
}

func TestStatsSkipsNonHTMLBuilder(t *testing.T) {
	c := setupProject(t)
	c.Builder = "latex"

	table, err := New(c, site.Default(), nil).Stats(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(table) != 2 {
		t.Errorf("Expected aggregated table, got %v", table)
	}
	if _, err := os.Stat(stats.Path(c.OutDir)); !os.IsNotExist(err) {
		t.Error("Expected no stats document for non-HTML builder")
	}
}

func TestStatsHistoryFailureIsNotFatal(t *testing.T) {
	c := setupProject(t)
	history := &failingHistory{}

	if _, err := New(c, site.Default(), history).Stats(context.Background()); err != nil {
		t.Fatalf("Expected history failure to be ignored, got: %v", err)
	}
	if history.calls != 1 {
		t.Errorf("Expected one RecordRun call, got %d", history.calls)
	}
}

func TestStatsMalformedCatalog(t *testing.T) {
	c := setupProject(t)
	writeFile(t, filepath.Join(c.LocalesDir, "es", "LC_MESSAGES", "broken.po"), "msgstr \"x\"\n")

	_, err := New(c, site.Default(), nil).Stats(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken.po") {
		t.Errorf("Expected error naming the broken catalog, got %v", err)
	}
}

func TestFeedMissingMetadata(t *testing.T) {
	c := setupProject(t)
	writeFile(t, c.Metadata, `tutorials/intro:
  ":og:title": Intro
  ":og:description": Get started
`)

	_, err := New(c, site.Default(), nil).Feed(context.Background())
	var missing *feed.MissingFieldError
	if !errors.As(err, &missing) || missing.Field != feed.KeyDate {
		t.Errorf("Expected missing date error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(c.OutDir, feed.FileName)); !os.IsNotExist(statErr) {
		t.Error("Expected no feed file after a failed build")
	}
}

func TestFeedFromBuiltHTML(t *testing.T) {
	c := setupProject(t)
	c.Metadata = ""
	writeFile(t, filepath.Join(c.OutDir, "tutorials", "intro.html"), `<html><head>
<meta property="og:title" content="Intro">
<meta property="og:description" content="Get started">
<meta name="date" content="2024-01-01">
</head></html>`)

	path, err := New(c, site.Default(), nil).Feed(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if path != filepath.Join(c.OutDir, feed.FileName) {
		t.Errorf("Unexpected feed path %s", path)
	}
}

func TestGraph(t *testing.T) {
	c := setupProject(t)
	p := New(c, site.Default(), nil)

	if _, err := p.Graph(context.Background()); err == nil {
		t.Error("Expected error before stats are published")
	}

	if _, err := p.Stats(context.Background()); err != nil {
		t.Fatal(err)
	}
	path, err := p.Graph(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `data-locale="en"`) {
		t.Error("Expected rendered heatmap with reference row")
	}
}
