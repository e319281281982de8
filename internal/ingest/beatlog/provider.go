package beatlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	"github.com/luctussier/Heart-Monitor/internal/ingest"
	"github.com/luctussier/Heart-Monitor/internal/models"
)

// Store persists parsed sessions. *storage.DB implements it.
type Store interface {
	InsertWorkout(ctx context.Context, row models.HeartWorkoutRow, beats []models.BeatRow) (bool, error)
}

// Provider processes heart monitor beat logs.
type Provider struct {
	db  Store
	log *slog.Logger
}

// NewProvider creates a new beat log ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a beat log and stores every session it contains. Sessions
// already stored are skipped, so re-sending the same log is harmless.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int, source string) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing beat log: %w", err)
	}
	return p.Store(ctx, sessions, userID, source)
}

// Store persists already parsed sessions.
func (p *Provider) Store(ctx context.Context, sessions []*heartrate.Workout, userID int, source string) (*ingest.Result, error) {
	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, w := range sessions {
		row, beats := models.FromWorkout(userID, source, w)
		result.BeatsReceived += int64(len(beats))
		result.BeatsValid += int64(row.ValidBeats)
		if !w.HasValidBeat() {
			result.SessionsInvalid++
		}

		inserted, err := p.db.InsertWorkout(ctx, row, beats)
		if err != nil {
			return nil, fmt.Errorf("storing session %s: %w", row.Label, err)
		}
		if !inserted {
			result.SessionsSkipped++
			continue
		}
		result.SessionsInserted++
		result.BeatsInserted += int64(len(beats))
		p.log.Debug("session stored", "id", row.ID, "label", row.Label, "beats", len(beats), "source", source)
	}

	if len(sessions) == 0 {
		result.Message = "no sessions found"
	}
	return result, nil
}
