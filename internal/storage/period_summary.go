package storage

import (
	"context"
	"fmt"
	"time"
)

// PeriodSummary holds aggregated session stats for one calendar bucket.
type PeriodSummary struct {
	Period          string   `json:"period"`
	Sessions        int      `json:"sessions"`
	UsableSessions  int      `json:"usable_sessions"`
	ValidBeats      int64    `json:"valid_beats"`
	TotalDurationMs int64    `json:"total_duration_ms"`
	AvgPeriodMs     *float64 `json:"avg_period_ms,omitempty"`
	MinPeriodMs     *int     `json:"min_period_ms,omitempty"`
	MaxPeriodMs     *int     `json:"max_period_ms,omitempty"`
}

// GetPeriodSummary returns session counts and rate extremes per day, week or
// month, newest first. Sessions are bucketed by when they were stored.
func (db *DB) GetPeriodSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]PeriodSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, created_at)::date AS period,
		        COUNT(*)::int,
		        COUNT(first_valid)::int,
		        COALESCE(SUM(valid_beats), 0),
		        COALESCE(SUM(duration_ms), 0),
		        AVG(NULLIF(average_ms, 0)),
		        MIN(min_period_ms),
		        MAX(max_period_ms)
		 FROM heart_workouts
		 WHERE created_at >= $2 AND created_at < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncUnit(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying period summary: %w", err)
	}
	defer rows.Close()

	var result []PeriodSummary
	for rows.Next() {
		var p PeriodSummary
		var d time.Time
		if err := rows.Scan(&d, &p.Sessions, &p.UsableSessions, &p.ValidBeats, &p.TotalDurationMs,
			&p.AvgPeriodMs, &p.MinPeriodMs, &p.MaxPeriodMs); err != nil {
			return nil, fmt.Errorf("scanning period summary: %w", err)
		}
		p.Period = d.Format("2006-01-02")
		result = append(result, p)
	}
	return result, rows.Err()
}

// truncUnit maps a bucket name to a date_trunc unit. Unknown buckets are daily.
func truncUnit(bucket string) string {
	switch bucket {
	case "week", "1 week":
		return "week"
	case "month", "1 month":
		return "month"
	default:
		return "day"
	}
}
