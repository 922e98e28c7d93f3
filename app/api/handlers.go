package api

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/guide-tools/app/database"
	"github.com/lysyi3m/guide-tools/app/feed"
	"github.com/lysyi3m/guide-tools/app/heatmap"
	"github.com/lysyi3m/guide-tools/app/site"
	"github.com/lysyi3m/guide-tools/app/stats"
	"github.com/lysyi3m/guide-tools/app/tasks"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// NewHandler creates the preview handlers. history and scheduler may be nil.
func NewHandler(outDir, version string, siteCfg *site.Config, history database.HistoryStore,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		outDir:    outDir,
		version:   version,
		site:      siteCfg,
		history:   history,
		renderer:  heatmap.NewRenderer(),
		scheduler: scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"history":   h.history != nil,
	}

	if info, err := os.Stat(stats.Path(h.outDir)); err == nil {
		health["stats_updated_at"] = info.ModTime().Format(time.RFC3339)
	}
	if info, err := os.Stat(filepath.Join(h.outDir, feed.FileName)); err == nil {
		health["feed_updated_at"] = info.ModTime().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	table, ok := h.loadStats(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *Handler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": h.site.LanguageList(),
	})
}

func (h *Handler) GetGraphPage(c *gin.Context) {
	h.renderGraph(c, h.renderer.RenderPage)
}

func (h *Handler) GetGraphFragment(c *gin.Context) {
	h.renderGraph(c, h.renderer.Render)
}

func (h *Handler) renderGraph(c *gin.Context, render func(w io.Writer, table stats.Table) error) {
	table, ok := h.loadStats(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, table); err != nil {
		if errors.Is(err, heatmap.ErrNoStats) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No translation stats"})
			return
		}
		slog.Error("Translation graph rendering error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) GetFeed(c *gin.Context) {
	path := filepath.Join(h.outDir, feed.FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to read feed", "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

func (h *Handler) APIListRuns(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runs, err := h.history.LatestRuns(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "latest_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *Handler) APIGetRun(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run id"})
		return
	}

	table, err := h.history.RunStats(c.Request.Context(), id)
	if errors.Is(err, database.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "run_stats", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    id,
		"stats": table,
	})
}

func (h *Handler) APILocaleTrend(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	locale := c.Param("locale")
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.history.LocaleTrend(c.Request.Context(), locale, limit)
	if err != nil {
		slog.Error("Database error", "operation", "locale_trend", "locale", locale, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locale": locale,
		"points": points,
	})
}

func (h *Handler) APIRebuild(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not running"})
		return
	}

	queued := h.scheduler.Refresh()
	slog.Info("Rebuild requested", "queued", queued)

	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

func (h *Handler) loadStats(c *gin.Context) (stats.Table, bool) {
	table, err := stats.Load(stats.Path(h.outDir))
	if err == nil {
		return table, true
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, stats.ErrEmpty) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No translation stats"})
		return nil, false
	}

	slog.Error("Failed to load translation stats", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid translation stats document"})
	return nil, false
}

func (h *Handler) historyEnabled(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stats history disabled"})
		return false
	}
	return true
}

func parseLimit(value string) (int, error) {
	if value == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 || limit > maxHistoryLimit {
		return 0, errors.New("limit must be between 1 and " + strconv.Itoa(maxHistoryLimit))
	}
	return limit, nil
}
