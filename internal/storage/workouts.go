package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/luctussier/Heart-Monitor/internal/models"
)

// ErrNotFound is returned when a workout does not exist for the user.
var ErrNotFound = errors.New("not found")

const workoutColumns = `id, user_id, source, label, clock_ms, clock_set, beat_count, valid_beats,
	total_beats, first_valid, last_valid, min_period_ms, max_period_ms, duration_ms, average_ms, created_at`

// WorkoutDetail is a workout with its full beat sequence.
type WorkoutDetail struct {
	Workout models.HeartWorkoutRow `json:"workout"`
	Beats   []models.BeatRow       `json:"beats"`
}

// InsertWorkout stores a session and its beats in one transaction. Returns
// true if inserted, false if the session was already stored.
func (db *DB) InsertWorkout(ctx context.Context, row models.HeartWorkoutRow, beats []models.BeatRow) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning workout insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`INSERT INTO heart_workouts (id, user_id, source, label, clock_ms, clock_set, beat_count, valid_beats,
		 total_beats, first_valid, last_valid, min_period_ms, max_period_ms, duration_ms, average_ms)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 ON CONFLICT (id) DO NOTHING`,
		row.ID, row.UserID, row.Source, row.Label, row.ClockMillis, row.ClockSet, row.BeatCount, row.ValidBeats,
		row.TotalBeats, row.FirstValid, row.LastValid, row.MinPeriod, row.MaxPeriod, row.DurationMs, row.AverageMs)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if len(beats) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"heart_beats"},
			[]string{"workout_id", "seq", "time_ms", "period_ms", "valid"},
			pgx.CopyFromSlice(len(beats), func(i int) ([]any, error) {
				b := beats[i]
				return []any{row.ID, b.Seq, b.TimeMs, b.PeriodMs, b.Valid}, nil
			}),
		)
		if err != nil {
			return false, fmt.Errorf("copying beats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing workout: %w", err)
	}
	return true, nil
}

// QueryWorkouts returns a user's most recently stored workouts.
func (db *DB) QueryWorkouts(ctx context.Context, userID, limit int) ([]models.HeartWorkoutRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM heart_workouts
		 WHERE user_id = $1
		 ORDER BY created_at DESC, clock_ms DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkoutRows(rows)
}

// GetWorkout returns a single workout with its beats.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*WorkoutDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM heart_workouts WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	workouts, err := scanWorkoutRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrNotFound
	}

	detail := &WorkoutDetail{Workout: workouts[0]}
	beatRows, err := db.Pool.Query(ctx,
		`SELECT seq, time_ms, period_ms, valid FROM heart_beats WHERE workout_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying beats: %w", err)
	}
	defer beatRows.Close()
	for beatRows.Next() {
		b := models.BeatRow{WorkoutID: id}
		if err := beatRows.Scan(&b.Seq, &b.TimeMs, &b.PeriodMs, &b.Valid); err != nil {
			return nil, fmt.Errorf("scanning beat: %w", err)
		}
		detail.Beats = append(detail.Beats, b)
	}
	return detail, beatRows.Err()
}

// DeleteWorkout removes a workout and its beats. Returns false if nothing matched.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID, userID int) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM heart_workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanWorkoutRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.HeartWorkoutRow, error) {
	var result []models.HeartWorkoutRow
	for rows.Next() {
		var w models.HeartWorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Source, &w.Label, &w.ClockMillis, &w.ClockSet,
			&w.BeatCount, &w.ValidBeats, &w.TotalBeats, &w.FirstValid, &w.LastValid,
			&w.MinPeriod, &w.MaxPeriod, &w.DurationMs, &w.AverageMs, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
