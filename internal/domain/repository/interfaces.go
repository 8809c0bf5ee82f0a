package repository

import (
	"context"

	"StockAnalog/internal/domain/models"
)

// ResultPublisher ships computed aftermath summaries back to the report pipeline.
type ResultPublisher interface {
	PublishAftermath(ctx context.Context, res *models.AftermathResult) error
	Close() error
}

type Metrics interface {
	RecordQuery(op string, seconds float64)
	RecordCandidates(instrumentID string, n int)
	RecordAnalogs(instrumentID string, n int)
	RecordError(kind string)
	RecordCache(hit bool)
}
