package feed

import (
	"cmp"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

type Builder struct {
	baseURL       string
	section       string
	defaultAuthor string
}

func NewBuilder(baseURL, section string) *Builder {
	return &Builder{
		baseURL:       baseURL,
		section:       cmp.Or(section, DefaultSection),
		defaultAuthor: DefaultAuthor,
	}
}

// WithAuthor sets the author used for pages without an author.
func (b *Builder) WithAuthor(author string) *Builder {
	if author != "" {
		b.defaultAuthor = author
	}
	return b
}

// Items builds one feed item per page in the builder's section. Pages are
// visited in name order; the first page with missing or malformed metadata
// aborts the build.
func (b *Builder) Items(pages map[string]Metadata) ([]FeedItem, error) {
	base, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	names := make([]string, 0, len(pages))
	for name := range pages {
		if strings.HasPrefix(name, b.section) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	items := make([]FeedItem, 0, len(names))
	for _, name := range names {
		item, err := b.item(base, name, pages[name])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (b *Builder) item(base *url.URL, page string, meta Metadata) (FeedItem, error) {
	var values [3]string
	for i, key := range []string{KeyTitle, KeyDescription, KeyDate} {
		value, ok := meta[key]
		if !ok || strings.TrimSpace(value) == "" {
			return FeedItem{}, &MissingFieldError{Page: page, Field: key}
		}
		values[i] = value
	}

	date, err := ParseDate(values[2])
	if err != nil {
		return FeedItem{}, fmt.Errorf("page %s: %w", page, err)
	}

	link := base.ResolveReference(&url.URL{Path: page + ".html"})

	return FeedItem{
		Title:       values[0],
		Description: values[1],
		URL:         link.String(),
		Author:      cmp.Or(meta[KeyAuthor], b.defaultAuthor),
		Date:        date,
	}, nil
}

// ParseDate accepts ISO-8601 dates with optional time and offset. Any offset
// is discarded: the wall-clock value is taken as UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, value)
}
