package beatlog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/models"
)

type memStore struct {
	workouts map[uuid.UUID]models.HeartWorkoutRow
	beats    int
	err      error
}

func (m *memStore) InsertWorkout(_ context.Context, row models.HeartWorkoutRow, beats []models.BeatRow) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.workouts == nil {
		m.workouts = map[uuid.UUID]models.HeartWorkoutRow{}
	}
	if _, ok := m.workouts[row.ID]; ok {
		return false, nil
	}
	m.workouts[row.ID] = row
	m.beats += len(beats)
	return true, nil
}

// TestProviderIngest verifies sessions are stored once and re-imports are skipped.
func TestProviderIngest(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, slog.Default())
	log := segment("10:0:0", 20) + segment("11:0:0", 20) + segment("12:0:0", 3)

	res, err := p.Ingest(context.Background(), strings.NewReader(log), 1, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SessionsReceived != 3 || res.SessionsInserted != 3 {
		t.Errorf("sessions received/inserted = %d/%d, want 3/3", res.SessionsReceived, res.SessionsInserted)
	}
	if res.SessionsInvalid != 1 {
		t.Errorf("invalid sessions = %d, want 1", res.SessionsInvalid)
	}
	if res.BeatsReceived != 43 || res.BeatsInserted != 43 || store.beats != 43 {
		t.Errorf("beats received/inserted/stored = %d/%d/%d, want 43", res.BeatsReceived, res.BeatsInserted, store.beats)
	}
	if res.BeatsValid != 38 {
		t.Errorf("valid beats = %d, want 38", res.BeatsValid)
	}

	again, err := p.Ingest(context.Background(), strings.NewReader(log), 1, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.SessionsInserted != 0 || again.SessionsSkipped != 3 {
		t.Errorf("re-import inserted/skipped = %d/%d, want 0/3", again.SessionsInserted, again.SessionsSkipped)
	}
}

// TestProviderIngestEmpty verifies an empty log reports a message.
func TestProviderIngestEmpty(t *testing.T) {
	p := NewProvider(&memStore{}, slog.Default())
	res, err := p.Ingest(context.Background(), strings.NewReader(""), 1, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message == "" {
		t.Error("expected message for empty log")
	}
}

// TestProviderIngestStoreError verifies storage failures are returned.
func TestProviderIngestStoreError(t *testing.T) {
	p := NewProvider(&memStore{err: errors.New("db down")}, slog.Default())
	if _, err := p.Ingest(context.Background(), strings.NewReader(segment("10:0:0", 20)), 1, "test"); err == nil {
		t.Fatal("expected error")
	}
}
