package database

import (
	"context"
	"time"

	"github.com/lysyi3m/guide-tools/app/stats"
)

type HistoryStore interface {
	RecordRun(ctx context.Context, startedAt time.Time, table stats.Table) (int64, error)
	LatestRuns(ctx context.Context, limit int) ([]Run, error)
	RunStats(ctx context.Context, runID int64) (stats.Table, error)
	LocaleTrend(ctx context.Context, locale string, limit int) ([]TrendPoint, error)
}
