package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/lysyi3m/guide-tools/app/catalog"
	"github.com/lysyi3m/guide-tools/app/stats"
)

var ErrRunNotFound = errors.New("run not found")

type StatsRepository struct {
	db *DB
}

func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// RecordRun stores table as a new run and returns its ID. The run and all its
// cells are written in one transaction.
func (r *StatsRepository) RecordRun(ctx context.Context, startedAt time.Time, table stats.Table) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, locales, catalogs) VALUES (?, ?, ?)`,
		startedAt.Unix(), len(table), table.Len())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_stats (run_id, locale, module, total, translated, fuzzy, untranslated, percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare stats insert: %w", err)
	}
	defer stmt.Close()

	for _, locale := range table.Locales() {
		for _, module := range table.Modules(locale) {
			s := table[locale][module]
			if _, err = stmt.ExecContext(ctx, id, locale, module, s.Total, s.Translated, s.Fuzzy, s.Untranslated, s.Percentage); err != nil {
				return 0, fmt.Errorf("failed to insert stats for %s/%s: %w", locale, module, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return id, nil
}

// LatestRuns returns up to limit runs, newest first.
func (r *StatsRepository) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, locales, catalogs
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var startedAt int64
		if err := rows.Scan(&run.ID, &startedAt, &run.Locales, &run.Catalogs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// RunStats returns the table recorded for a run.
func (r *StatsRepository) RunStats(ctx context.Context, runID int64) (stats.Table, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT locale, module, total, translated, fuzzy, untranslated, percentage
		FROM run_stats
		WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}
	defer rows.Close()

	table := make(stats.Table)
	for rows.Next() {
		var locale, module string
		var s catalog.Stats
		if err := rows.Scan(&locale, &module, &s.Total, &s.Translated, &s.Fuzzy, &s.Untranslated, &s.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan run stats: %w", err)
		}
		table.Set(locale, module, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run stats: %w", err)
	}

	return table, nil
}

// LocaleTrend returns the locale's mean completion over its latest limit
// runs, oldest first.
func (r *StatsRepository) LocaleTrend(ctx context.Context, locale string, limit int) ([]TrendPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, AVG(s.percentage), COUNT(*)
		FROM runs r
		JOIN run_stats s ON s.run_id = r.id
		WHERE s.locale = ?
		GROUP BY r.id, r.started_at
		ORDER BY r.id DESC
		LIMIT ?
	`, locale, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query locale trend: %w", err)
	}
	defer rows.Close()

	points := []TrendPoint{}
	for rows.Next() {
		var point TrendPoint
		var startedAt int64
		if err := rows.Scan(&point.RunID, &startedAt, &point.Mean, &point.Catalogs); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		point.StartedAt = time.Unix(startedAt, 0).UTC()
		point.Mean = math.RoundToEven(point.Mean*100) / 100
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locale trend: %w", err)
	}

	slices.Reverse(points)
	return points, nil
}
