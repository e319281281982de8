package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored sessions.
type DataStats struct {
	TotalWorkouts    int64        `json:"total_workouts"`
	UsableWorkouts   int64        `json:"usable_workouts"`
	TotalBeats       int64        `json:"total_beats"`
	ValidBeats       int64        `json:"valid_beats"`
	TotalDurationMs  int64        `json:"total_duration_ms"`
	FirstStored      *time.Time   `json:"first_stored"`
	LastStored       *time.Time   `json:"last_stored"`
	WorkoutsBySource []SourceStat `json:"workouts_by_source"`
}

// SourceStat holds summary stats for a single ingest source.
type SourceStat struct {
	Source          string `json:"source"`
	Count           int64  `json:"count"`
	TotalDurationMs int64  `json:"total_duration_ms"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(first_valid), COALESCE(SUM(beat_count), 0), COALESCE(SUM(valid_beats), 0),
		 COALESCE(SUM(duration_ms), 0), MIN(created_at), MAX(created_at)
		 FROM heart_workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.UsableWorkouts, &stats.TotalBeats, &stats.ValidBeats,
		&stats.TotalDurationMs, &stats.FirstStored, &stats.LastStored)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT source, COUNT(*), COALESCE(SUM(duration_ms), 0)
		 FROM heart_workouts
		 WHERE user_id = $1
		 GROUP BY source
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s SourceStat
		if err := rows.Scan(&s.Source, &s.Count, &s.TotalDurationMs); err != nil {
			return nil, fmt.Errorf("scanning source stat: %w", err)
		}
		stats.WorkoutsBySource = append(stats.WorkoutsBySource, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
