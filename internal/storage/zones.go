package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ZoneBand holds the count and percentage of valid beats in one heart rate zone.
type ZoneBand struct {
	Zone     string  `json:"zone"`
	BPMRange string  `json:"bpm_range"`
	Beats    int     `json:"beats"`
	Pct      float64 `json:"pct"`
}

// ZoneDistribution is the zone breakdown of one stored session.
type ZoneDistribution struct {
	WorkoutID  uuid.UUID  `json:"workout_id"`
	ValidBeats int        `json:"valid_beats"`
	Zones      []ZoneBand `json:"zones"`
}

// GetZoneDistribution buckets the valid beats of a workout by instantaneous
// rate. Zone edges are on the period, so 400ms is the 150 bpm boundary.
func (db *DB) GetZoneDistribution(ctx context.Context, id uuid.UUID, userID int) (*ZoneDistribution, error) {
	var exists bool
	if err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM heart_workouts WHERE id = $1 AND user_id = $2)`,
		id, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking workout %s: %w", id, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT zone, bpm_range, beats FROM (
			SELECT
				CASE
					WHEN period_ms < 400 THEN 'max'
					WHEN period_ms < 500 THEN 'hard'
					WHEN period_ms < 600 THEN 'moderate'
					WHEN period_ms < 750 THEN 'light'
					ELSE 'rest'
				END AS zone,
				CASE
					WHEN period_ms < 400 THEN '>150'
					WHEN period_ms < 500 THEN '121-150'
					WHEN period_ms < 600 THEN '101-120'
					WHEN period_ms < 750 THEN '81-100'
					ELSE '<=80'
				END AS bpm_range,
				COUNT(*)::int AS beats
			FROM heart_beats
			WHERE workout_id = $1 AND valid
			GROUP BY zone, bpm_range
		) sub
		ORDER BY CASE zone
			WHEN 'max' THEN 1
			WHEN 'hard' THEN 2
			WHEN 'moderate' THEN 3
			WHEN 'light' THEN 4
			WHEN 'rest' THEN 5
		END`,
		id)
	if err != nil {
		return nil, fmt.Errorf("querying zone distribution: %w", err)
	}
	defer rows.Close()

	result := &ZoneDistribution{WorkoutID: id}
	for rows.Next() {
		var b ZoneBand
		if err := rows.Scan(&b.Zone, &b.BPMRange, &b.Beats); err != nil {
			return nil, fmt.Errorf("scanning zone band: %w", err)
		}
		result.Zones = append(result.Zones, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.ValidBeats = fillZonePcts(result.Zones)
	return result, nil
}

// fillZonePcts sets each band's share of the total and returns the total.
func fillZonePcts(zones []ZoneBand) int {
	total := 0
	for _, z := range zones {
		total += z.Beats
	}
	if total == 0 {
		return 0
	}
	for i := range zones {
		zones[i].Pct = float64(zones[i].Beats) / float64(total) * 100
	}
	return total
}
