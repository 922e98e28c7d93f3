package feed

import (
	"errors"
	"fmt"
	"time"
)

// Page metadata keys as produced by the documentation build.
const (
	KeyTitle       = ":og:title"
	KeyDescription = ":og:description"
	KeyDate        = "date"
	KeyAuthor      = ":og:author"
)

const (
	DefaultSection = "tutorials/"
	DefaultAuthor  = "PyOpenSci"
	FileName       = "tutorials.rss"
)

var ErrInvalidDate = errors.New("invalid date")

// Metadata is the raw key/value metadata of one documentation page.
type Metadata map[string]string

type FeedItem struct {
	Title       string
	Description string
	URL         string
	Author      string
	Date        time.Time // UTC
}

type Channel struct {
	Title         string
	Link          string
	SelfLink      string
	Description   string
	Language      string
	LastBuildDate time.Time
}

type Feed struct {
	Channel
	Items []FeedItem
}

type MissingFieldError struct {
	Page  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("page %s: missing required metadata %q", e.Page, e.Field)
}
