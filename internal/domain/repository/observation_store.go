package repository

import (
	"context"
	"time"

	"StockAnalog/internal/domain/models"
)

// ObservationStore provides read access to the per-instrument price history.
// Implementations return observations in ascending CapturedAt order.
type ObservationStore interface {
	// FindInRange returns observations of the instrument whose ChangePct lies in
	// [minChange, maxChange] and that were captured strictly before capturedBefore.
	FindInRange(ctx context.Context, instrumentID string, minChange, maxChange float64, capturedBefore time.Time) ([]models.PriceObservation, error)
	// ObservationsAfter returns up to limit observations captured strictly after anchor.
	ObservationsAfter(ctx context.Context, instrumentID string, anchor time.Time, limit int) ([]models.PriceObservation, error)
	// PriceAt returns the price observed at exactly ts, and false if there is none.
	PriceAt(ctx context.Context, instrumentID string, ts time.Time) (models.PriceObservation, bool, error)
	InsertBatch(ctx context.Context, obs []models.PriceObservation) error
	Health(ctx context.Context) error
	Close() error
}
