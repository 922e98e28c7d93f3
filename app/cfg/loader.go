package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultCommand = "build"

var Commands = []string{"build", "stats", "feed", "graph", "history", "serve", "languages"}

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input and output locations
	SourceDir  string `long:"source-dir" env:"SOURCE_DIR" default:"." description:"Root of the documentation sources"`
	LocalesDir string `long:"locales-dir" env:"LOCALES_DIR" default:"locales" description:"Directory holding <locale>/LC_MESSAGES/<module>.po catalogs, relative to the source dir"`
	OutDir     string `long:"out-dir" env:"OUT_DIR" default:"_build/html" description:"Build output directory, relative to the source dir"`
	Builder    string `long:"builder" env:"BUILDER" default:"html" description:"Documentation builder name; stats are only published for html"`
	SiteConfig string `long:"site-config" env:"SITE_CONFIG" default:"site.yml" description:"Site configuration file, relative to the source dir"`
	Metadata   string `long:"metadata" env:"METADATA_FILE" description:"Page metadata manifest (YAML); built HTML pages are scanned when empty"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"_build/stats.sqlite" description:"Stats history database, relative to the source dir; empty disables history"`

	// Preview server
	Port            string `long:"port" env:"PORT" default:"8000" description:"Preview server port"`
	RebuildInterval int    `long:"rebuild-interval" env:"REBUILD_INTERVAL" default:"30" description:"Seconds between background stats and feed refreshes in serve mode"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers in serve mode"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" description:"Timezone for timestamps (e.g., UTC, Europe/Madrid)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"build, stats, feed, graph, history, serve or languages (default: build)"`
	} `positional-args:"yes"`
}

// Load parses command line arguments and environment variables. It returns
// nil without error when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] [command]"

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := cmp.Or(raw.Args.Command, DefaultCommand)
	if !slices.Contains(Commands, command) {
		return nil, fmt.Errorf("unknown command %q (expected one of %v)", command, Commands)
	}
	if raw.RebuildInterval <= 0 {
		return nil, fmt.Errorf("rebuild interval must be positive, got %d", raw.RebuildInterval)
	}
	if raw.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}

	cfg := &Cfg{
		Command:         command,
		SourceDir:       raw.SourceDir,
		LocalesDir:      resolve(raw.SourceDir, raw.LocalesDir),
		OutDir:          resolve(raw.SourceDir, raw.OutDir),
		Builder:         raw.Builder,
		SiteConfig:      resolve(raw.SourceDir, raw.SiteConfig),
		Metadata:        resolve(raw.SourceDir, raw.Metadata),
		DBPath:          resolve(raw.SourceDir, raw.DBPath),
		Port:            raw.Port,
		RebuildInterval: raw.RebuildInterval,
		WorkerCount:     raw.WorkerCount,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
