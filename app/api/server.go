package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the preview server. Unmatched GET requests are served
// from the build output directory.
func NewServer(handler *Handler) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	r.GET("/translation-graph", handler.GetGraphPage)
	r.GET("/translation-graph/fragment", handler.GetGraphFragment)
	r.GET("/tutorials.rss", handler.GetFeed)

	api := r.Group("/api")
	{
		api.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service": "guide-tools preview",
				"version": handler.version,
				"endpoints": map[string]string{
					"health":    "/health",
					"stats":     "/api/stats",
					"languages": "/api/languages",
					"history":   "/api/history?limit=<n>",
					"trend":     "/api/history/<locale>?limit=<n>",
					"run":       "/api/runs/<id>",
					"rebuild":   "/api/rebuild (POST)",
					"graph":     "/translation-graph",
					"fragment":  "/translation-graph/fragment",
					"feed":      "/tutorials.rss",
				},
			})
		})
		api.GET("/stats", handler.GetStats)
		api.GET("/languages", handler.GetLanguages)
		api.GET("/history", handler.APIListRuns)
		api.GET("/history/:locale", handler.APILocaleTrend)
		api.GET("/runs/:id", handler.APIGetRun)
		api.POST("/rebuild", handler.APIRebuild)
	}

	files := http.FileServer(http.Dir(handler.outDir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	slog.Debug("Preview routes configured", "out_dir", handler.outDir)
}
