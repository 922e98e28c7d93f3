package feed

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser reads a rendered feed back into the package types.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(doc string) (*Feed, error) {
	parsed, err := p.gofeedParser.ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	if parsed.FeedType != "rss" {
		return nil, fmt.Errorf("failed to parse feed: expected rss, got %s", parsed.FeedType)
	}

	feed := &Feed{
		Channel: Channel{
			Title:       parsed.Title,
			Link:        parsed.Link,
			Description: parsed.Description,
			Language:    parsed.Language,
		},
		Items: make([]FeedItem, 0, len(parsed.Items)),
	}
	if parsed.UpdatedParsed != nil {
		feed.LastBuildDate = parsed.UpdatedParsed.UTC()
	}
	feed.SelfLink = selfLink(parsed)

	for _, item := range parsed.Items {
		feed.Items = append(feed.Items, p.normalizeItem(item))
	}

	return feed, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) FeedItem {
	normalized := FeedItem{
		Title:       item.Title,
		Description: item.Description,
		URL:         item.Link,
	}
	if item.PublishedParsed != nil {
		normalized.Date = item.PublishedParsed.UTC()
	}
	if item.Author != nil {
		normalized.Author = strings.TrimSpace(item.Author.Name)
		if normalized.Author == "" {
			normalized.Author = strings.TrimSpace(item.Author.Email)
		}
	}
	return normalized
}

func selfLink(parsed *gofeed.Feed) string {
	if parsed.FeedLink != "" {
		return parsed.FeedLink
	}
	for _, link := range parsed.Links {
		if link != parsed.Link {
			return link
		}
	}
	return ""
}

// Verify checks that doc parses as RSS and every item has a permalink.
// It returns the number of items.
func Verify(doc string) (int, error) {
	feed, err := NewParser().Run(doc)
	if err != nil {
		return 0, err
	}
	for i, item := range feed.Items {
		if item.URL == "" {
			return 0, fmt.Errorf("feed item %d has no link", i)
		}
	}
	return len(feed.Items), nil
}
