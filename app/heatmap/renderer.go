package heatmap

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/lysyi3m/guide-tools/app/stats"
)

// Bucket is a completion range [Min, Max) rendered with one colour. The last
// bucket only holds exactly 100%.
type Bucket struct {
	Name  string
	Min   float64
	Max   float64
	Color string
	Ink   string
}

var Buckets = []Bucket{
	{Name: "low", Min: 0, Max: 25, Color: "#0508b8", Ink: "#ffffff"},
	{Name: "partial", Min: 25, Max: 75, Color: "#6b1cfb", Ink: "#ffffff"},
	{Name: "high", Min: 75, Max: 100, Color: "#dd2bfd", Ink: "#ffffff"},
	{Name: "complete", Min: 100, Max: 100, Color: "#fec3fe", Ink: "#1a1a1a"},
}

func BucketFor(percentage float64) Bucket {
	switch {
	case percentage >= 100:
		return Buckets[3]
	case percentage >= 75:
		return Buckets[2]
	case percentage >= 25:
		return Buckets[1]
	default:
		return Buckets[0]
	}
}

const fragmentStyle = `
.translation-graph { overflow-x: auto; font-family: var(--bs-font-sans-serif, sans-serif); color: var(--bs-body-color, inherit); }
.translation-graph table { border-collapse: separate; border-spacing: 5px; }
.translation-graph th { font-weight: 600; padding: 4px 8px; }
.translation-graph thead th { font-family: var(--bs-font-monospace, monospace); writing-mode: vertical-rl; transform: rotate(180deg); text-align: left; }
.translation-graph tbody th { text-align: right; white-space: nowrap; }
.translation-graph td { min-width: 3em; padding: 6px; text-align: center; border-radius: 4px; font-variant-numeric: tabular-nums; }
.translation-graph td.tg-empty { background: transparent; border: 1px dashed currentColor; opacity: 0.5; }
.translation-graph .tg-legend { display: flex; gap: 12px; margin-top: 8px; font-size: 0.85em; }
.translation-graph .tg-swatch { display: inline-block; width: 1em; height: 1em; margin-right: 4px; vertical-align: middle; border-radius: 2px; }
`

type Renderer struct {
	id string
}

func NewRenderer() *Renderer {
	return &Renderer{id: "translation-graph"}
}

// Render writes the heatmap fragment for table.
func (r *Renderer) Render(w io.Writer, table stats.Table) error {
	grid, err := BuildGrid(table)
	if err != nil {
		return err
	}
	return r.Fragment(grid).Render(w)
}

// RenderFile renders the stats document published at path.
func (r *Renderer) RenderFile(w io.Writer, path string) error {
	table, err := stats.Load(path)
	if err != nil {
		return err
	}
	return r.Render(w, table)
}

// RenderPage wraps the fragment in a standalone HTML document.
func (r *Renderer) RenderPage(w io.Writer, table stats.Table) error {
	grid, err := BuildGrid(table)
	if err != nil {
		return err
	}

	page := g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(g.Attr("lang", ReferenceLocale),
			Head(
				Meta(Charset("UTF-8")),
				TitleEl(g.Text("Translation status")),
			),
			Body(
				H1(g.Text("Translation status")),
				r.Fragment(grid),
			),
		),
	})
	return page.Render(w)
}

func (r *Renderer) Fragment(grid *Grid) g.Node {
	header := []g.Node{Th(g.Attr("scope", "col"), g.Text("Locale"))}
	for _, module := range grid.Modules {
		header = append(header, Th(g.Attr("scope", "col"), g.Text(module)))
	}

	body := make([]g.Node, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		body = append(body, rowNode(row))
	}

	return Div(ID(r.id), Class("translation-graph"),
		StyleEl(g.Raw(fragmentStyle)),
		Table(
			THead(Tr(g.Group(header))),
			TBody(g.Group(body)),
		),
		legendNode(),
	)
}

func rowNode(row Row) g.Node {
	label := row.Locale
	if row.Name != "" {
		label = fmt.Sprintf("%s (%s)", row.Name, row.Locale)
	}

	cells := []g.Node{
		Th(g.Attr("scope", "row"), g.Attr("title", fmt.Sprintf("Mean completion: %s%%", formatPercentage(row.Mean))), g.Text(label)),
	}
	for _, cell := range row.Cells {
		cells = append(cells, cellNode(cell))
	}

	return Tr(g.Attr("data-locale", row.Locale), g.Group(cells))
}

func cellNode(cell Cell) g.Node {
	if !cell.HasData {
		return Td(Class("tg-cell tg-empty"),
			g.Attr("data-module", cell.Module),
			g.Attr("title", cell.Module+"\nNo data"),
			g.Text("n/a"),
		)
	}

	bucket := BucketFor(cell.Stats.Percentage)
	return Td(Class("tg-cell tg-"+bucket.Name),
		g.Attr("data-module", cell.Module),
		g.Attr("style", fmt.Sprintf("background-color: %s; color: %s;", bucket.Color, bucket.Ink)),
		g.Attr("title", tooltip(cell)),
		g.Text(strconv.Itoa(int(math.Floor(cell.Stats.Percentage)))),
	)
}

func tooltip(cell Cell) string {
	s := cell.Stats
	lines := []string{
		cell.Module,
		fmt.Sprintf("Translated: %d", s.Translated),
		fmt.Sprintf("Fuzzy: %d", s.Fuzzy),
		fmt.Sprintf("Untranslated: %d", s.Untranslated),
		fmt.Sprintf("Total: %d", s.Total),
		fmt.Sprintf("Completed: %s%%", formatPercentage(s.Percentage)),
	}
	return strings.Join(lines, "\n")
}

func legendNode() g.Node {
	items := make([]g.Node, 0, len(Buckets))
	for _, bucket := range Buckets {
		text := fmt.Sprintf("%g-%g%%", bucket.Min, bucket.Max)
		if bucket.Min == bucket.Max {
			text = fmt.Sprintf("%g%%", bucket.Min)
		}
		items = append(items, Span(
			Span(Class("tg-swatch"), g.Attr("style", "background-color: "+bucket.Color+";")),
			g.Text(text),
		))
	}
	return Div(Class("tg-legend"), g.Attr("title", "Completion %"), g.Group(items))
}

func formatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
