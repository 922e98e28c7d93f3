package site

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL         = "https://www.pyopensci.org/python-package-guide/"
	DefaultFeedSection     = "tutorials/"
	DefaultFeedTitle       = "PyOpenSci Tutorials"
	DefaultFeedLink        = "https://www.pyopensci.org/python-package-guide/tutorials/intro.html"
	DefaultFeedSelfLink    = "https://www.pyopensci.org/python-package-guide/tutorials.rss"
	DefaultFeedDescription = "Tutorials for learning python i guess!!!"
	DefaultFeedLanguage    = "en"
	DefaultFeedAuthor      = "PyOpenSci"
)

var DefaultLanguages = []string{"es", "ja"}

// Load reads the site configuration at path. A missing file yields the
// defaults; any other read or parse problem is an error.
func Load(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("Site configuration not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read site configuration: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse site configuration %s: %w", path, err)
		}
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site configuration %s: %w", path, err)
	}

	return &config, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Languages == nil {
		c.Languages = slices.Clone(DefaultLanguages)
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	defaults := []struct {
		field *string
		value string
	}{
		{&c.Feed.Section, DefaultFeedSection},
		{&c.Feed.Title, DefaultFeedTitle},
		{&c.Feed.Link, DefaultFeedLink},
		{&c.Feed.SelfLink, DefaultFeedSelfLink},
		{&c.Feed.Description, DefaultFeedDescription},
		{&c.Feed.Language, DefaultFeedLanguage},
		{&c.Feed.Author, DefaultFeedAuthor},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
}

func (c *Config) Validate() error {
	for _, code := range c.Languages {
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("invalid language code %q: %w", code, err)
		}
	}
	for _, code := range c.ReleaseLanguages {
		if !c.HasLanguage(code) {
			return fmt.Errorf("release language %q is not in languages %v", code, c.Languages)
		}
	}
	if _, err := language.Parse(c.Feed.Language); err != nil {
		return fmt.Errorf("invalid feed language %q: %w", c.Feed.Language, err)
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return fmt.Errorf("base URL %q must be absolute", c.BaseURL)
	}

	return nil
}

func (c *Config) HasLanguage(code string) bool {
	return slices.Contains(c.Languages, code)
}

func (c *Config) IsRelease(code string) bool {
	return slices.Contains(c.ReleaseLanguages, code)
}

// LanguageList describes every configured language in configuration order.
func (c *Config) LanguageList() []Language {
	names := display.Tags(language.English)

	list := make([]Language, 0, len(c.Languages))
	for _, code := range c.Languages {
		entry := Language{Code: code, Release: c.IsRelease(code)}
		if tag, err := language.Parse(code); err == nil {
			entry.Name = names.Name(tag)
		}
		list = append(list, entry)
	}
	return list
}
