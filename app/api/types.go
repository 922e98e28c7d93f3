package api

import (
	"io"

	"github.com/lysyi3m/guide-tools/app/database"
	"github.com/lysyi3m/guide-tools/app/heatmap"
	"github.com/lysyi3m/guide-tools/app/site"
	"github.com/lysyi3m/guide-tools/app/stats"
	"github.com/lysyi3m/guide-tools/app/tasks"
)

type RendererInterface interface {
	Render(w io.Writer, table stats.Table) error
	RenderPage(w io.Writer, table stats.Table) error
}

var _ RendererInterface = (*heatmap.Renderer)(nil)

type Handler struct {
	outDir    string
	version   string
	site      *site.Config
	history   database.HistoryStore
	renderer  RendererInterface
	scheduler tasks.TaskSchedulerInterface
}
