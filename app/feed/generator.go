package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"time"

	"github.com/lysyi3m/guide-tools/app/atomicfile"
)

// DateFormat is RFC 822 with the zone always written as GMT.
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders feed as an RSS 2.0 document. Items are written newest first;
// the input slice is not reordered.
func (g *Generator) Run(feed Feed) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feed.Title, 4)
	g.writeElement(&buf, "link", feed.Link, 4)
	if feed.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(feed.SelfLink)))
	}
	g.writeElement(&buf, "description", feed.Description, 4)
	g.writeElement(&buf, "language", feed.Language, 4)

	lastBuildDate := feed.LastBuildDate
	if lastBuildDate.IsZero() {
		lastBuildDate = time.Now()
	}
	g.writeElement(&buf, "lastBuildDate", FormatDate(lastBuildDate), 4)

	items := make([]FeedItem, len(feed.Items))
	copy(items, feed.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item FeedItem) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.URL, 6)
	g.writeElement(buf, "description", item.Description, 6)
	g.writeElement(buf, "author", item.Author, 6)

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(item.URL))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", FormatDate(item.Date), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// FormatDate renders t's wall clock as an RFC 822 date in GMT, ignoring its location.
func FormatDate(t time.Time) string {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Format(DateFormat)
}

// Write stores a rendered feed at path, creating parent directories. The file
// is replaced atomically so the preview server never serves a partial feed.
func Write(path, doc string) error {
	if err := atomicfile.Write(path, []byte(doc)); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	slog.Info("Feed written", "path", path, "bytes", len(doc))
	return nil
}
