package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/guide-tools/app/api"
	"github.com/lysyi3m/guide-tools/app/cfg"
	"github.com/lysyi3m/guide-tools/app/database"
	"github.com/lysyi3m/guide-tools/app/pipeline"
	"github.com/lysyi3m/guide-tools/app/site"
	"github.com/lysyi3m/guide-tools/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	siteCfg, err := site.Load(appCfg.SiteConfig)
	if err != nil {
		return err
	}

	if appCfg.Command == "languages" {
		return printLanguages(appCfg, siteCfg)
	}

	var history database.HistoryStore
	if appCfg.DBPath != "" {
		db, err := database.Open(appCfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		history = database.NewStatsRepository(db)
	}

	p := pipeline.New(appCfg, siteCfg, history)
	ctx := context.Background()

	switch appCfg.Command {
	case "build":
		return p.Build(ctx)
	case "stats":
		_, err := p.Stats(ctx)
		return err
	case "feed":
		_, err := p.Feed(ctx)
		return err
	case "graph":
		_, err := p.Graph(ctx)
		return err
	case "history":
		if history == nil {
			return errors.New("stats history is disabled, set --db-path")
		}
		return printHistory(ctx, history, siteCfg)
	case "serve":
		return serve(appCfg, siteCfg, p, history)
	}

	return fmt.Errorf("unknown command %q", appCfg.Command)
}

func serve(appCfg *cfg.Cfg, siteCfg *site.Config, p *pipeline.Pipeline, history database.HistoryStore) error {
	slog.Info("Starting preview server", "version", appCfg.Version, "out_dir", appCfg.OutDir)

	if err := p.Build(context.Background()); err != nil {
		slog.Warn("Initial build failed", "error", err)
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.RebuildInterval)
	scheduler := tasks.NewScheduler(p, time.Duration(appCfg.RebuildInterval)*time.Second, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(appCfg.OutDir, appCfg.Version, siteCfg, history, scheduler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening",
			"port", appCfg.Port,
			"graph", fmt.Sprintf("http://localhost:%s/translation-graph", appCfg.Port),
			"feed", fmt.Sprintf("http://localhost:%s/tutorials.rss", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}

func printHistory(ctx context.Context, history database.HistoryStore, siteCfg *site.Config) error {
	runs, err := history.LatestRuns(ctx, 10)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	fmt.Println("Recent runs:")
	for _, r := range runs {
		fmt.Printf("  #%d  %s  %d locales, %d catalogs\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Locales, r.Catalogs)
	}

	fmt.Println("Completion trend:")
	for _, lang := range siteCfg.LanguageList() {
		points, err := history.LocaleTrend(ctx, lang.Code, 10)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			continue
		}
		fmt.Printf("  %-6s %-12s", lang.Code, lang.Name)
		for _, point := range points {
			fmt.Printf(" %6.2f", point.Mean)
		}
		fmt.Println()
	}
	return nil
}

func printLanguages(appCfg *cfg.Cfg, siteCfg *site.Config) error {
	for _, lang := range siteCfg.LanguageList() {
		release := ""
		if lang.Release {
			release = "release"
		}
		fmt.Printf("%-6s %-24s %s\n", lang.Code, lang.Name, release)
	}

	entries, err := os.ReadDir(appCfg.LocalesDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() && !siteCfg.HasLanguage(entry.Name()) {
			slog.Warn("Locale directory is not a configured language", "locale", entry.Name())
		}
	}
	return nil
}
