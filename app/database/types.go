package database

import (
	"time"
)

// Run is one recorded aggregation of the locales tree.
type Run struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Locales   int       `json:"locales"`
	Catalogs  int       `json:"catalogs"`
}

// TrendPoint is a locale's mean completion in one run.
type TrendPoint struct {
	RunID     int64     `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Mean      float64   `json:"mean"`
	Catalogs  int       `json:"catalogs"`
}
