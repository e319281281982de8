package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/luctussier/Heart-Monitor/internal/models"
	"github.com/luctussier/Heart-Monitor/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkouts(ctx context.Context, userID, limit int) ([]models.HeartWorkoutRow, error)
	GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*storage.WorkoutDetail, error)
	GetZoneDistribution(ctx context.Context, id uuid.UUID, userID int) (*storage.ZoneDistribution, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
