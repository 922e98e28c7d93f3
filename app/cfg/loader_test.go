package cfg

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Command != "build" {
		t.Errorf("Expected default command 'build', got '%s'", cfg.Command)
	}
	if cfg.LocalesDir != "locales" {
		t.Errorf("Expected locales dir 'locales', got '%s'", cfg.LocalesDir)
	}
	if cfg.OutDir != filepath.Join("_build", "html") {
		t.Errorf("Expected out dir '_build/html', got '%s'", cfg.OutDir)
	}
	if cfg.Builder != "html" {
		t.Errorf("Expected builder 'html', got '%s'", cfg.Builder)
	}
	if cfg.Metadata != "" {
		t.Errorf("Expected empty metadata manifest, got '%s'", cfg.Metadata)
	}
	if cfg.Port != "8000" {
		t.Errorf("Expected port '8000', got '%s'", cfg.Port)
	}
	if cfg.RebuildInterval != 30 || cfg.WorkerCount != 2 {
		t.Errorf("Unexpected scheduler defaults: %d / %d", cfg.RebuildInterval, cfg.WorkerCount)
	}
}

func TestLoadFlagsAndCommand(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load([]string{
		"--source-dir", root,
		"--builder", "latex",
		"--metadata", "meta.yml",
		"--db-path=",
		"--port", "9000",
		"serve",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Command != "serve" {
		t.Errorf("Expected command 'serve', got '%s'", cfg.Command)
	}
	if cfg.LocalesDir != filepath.Join(root, "locales") {
		t.Errorf("Expected locales dir under source dir, got '%s'", cfg.LocalesDir)
	}
	if cfg.Metadata != filepath.Join(root, "meta.yml") {
		t.Errorf("Expected metadata under source dir, got '%s'", cfg.Metadata)
	}
	if cfg.DBPath != "" {
		t.Errorf("Expected history disabled, got '%s'", cfg.DBPath)
	}
	if cfg.Builder != "latex" || cfg.Port != "9000" {
		t.Errorf("Unexpected values: builder=%s port=%s", cfg.Builder, cfg.Port)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LOCALES_DIR", "/srv/locales")
	t.Setenv("WORKER_COUNT", "4")

	cfg, err := Load([]string{"stats"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.LocalesDir != "/srv/locales" {
		t.Errorf("Expected absolute locales dir to be kept, got '%s'", cfg.LocalesDir)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("Expected worker count 4, got %d", cfg.WorkerCount)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"deploy"}, "unknown command"},
		{"zero interval", []string{"--rebuild-interval", "0"}, "rebuild interval"},
		{"zero workers", []string{"--worker-count", "0"}, "worker count"},
		{"unknown flag", []string{"--nope"}, "failed to parse configuration"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(test.args)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("Expected error containing %q, got %v", test.want, err)
			}
		})
	}
}
