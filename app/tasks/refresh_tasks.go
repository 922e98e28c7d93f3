package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RefreshStatsTask struct {
	Task
	pipeline Pipeline
}

func NewRefreshStatsTask(pipeline Pipeline) *RefreshStatsTask {
	return &RefreshStatsTask{
		Task:     NewTask(TaskTypeRefreshStats),
		pipeline: pipeline,
	}
}

func (t *RefreshStatsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	table, err := t.pipeline.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh translation stats: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"locales", len(table),
		"catalogs", table.Len())

	return nil
}

type RefreshFeedTask struct {
	Task
	pipeline Pipeline
}

func NewRefreshFeedTask(pipeline Pipeline) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:     NewTask(TaskTypeRefreshFeed),
		pipeline: pipeline,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path, err := t.pipeline.Feed(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh feed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"path", path)

	return nil
}
