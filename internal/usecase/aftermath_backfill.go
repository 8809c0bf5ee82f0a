package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"StockAnalog/internal/domain/models"
	domrepo "StockAnalog/internal/domain/repository"
	svcmetrics "StockAnalog/internal/service/metrics"
	pkgkafka "StockAnalog/pkg/kafka"
	applogger "StockAnalog/pkg/logger"
	pkgmetrics "StockAnalog/pkg/metrics"
)

// AftermathComputer is the part of AnalogFinder the backfill needs.
type AftermathComputer interface {
	Aftermath(ctx context.Context, instrumentID string, eventDate time.Time, eventPrice decimal.Decimal) (*models.AftermathSummary, error)
}

// AftermathBackfillHandler consumes aftermath jobs from Kafka and publishes results.
type AftermathBackfillHandler struct {
	topic     string
	finder    AftermathComputer
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	validate  *validator.Validate
	now       func() time.Time
}

func NewAftermathBackfillHandler(topic string, finder AftermathComputer, publisher domrepo.ResultPublisher, metrics domrepo.Metrics, l *applogger.Logger) *AftermathBackfillHandler {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	return &AftermathBackfillHandler{
		topic:     topic,
		finder:    finder,
		publisher: publisher,
		metrics:   metrics,
		l:         l,
		validate:  validator.New(),
		now:       time.Now,
	}
}

func (h *AftermathBackfillHandler) Topic() string { return h.topic }

// incoming message schema: {report_id, instrument_id, event_date (RFC3339), event_price}
func (h *AftermathBackfillHandler) Handle(ctx context.Context, b []byte) error {
	var job models.AftermathJob
	if err := json.Unmarshal(b, &job); err != nil {
		h.fail("backfill_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode aftermath job: %w", err))
	}
	if err := h.validate.Struct(job); err != nil {
		h.fail("backfill_invalid")
		return pkgkafka.Permanent(fmt.Errorf("invalid aftermath job: %w", err))
	}

	summary, err := h.finder.Aftermath(ctx, job.InstrumentID, job.EventDate, decimal.NewFromFloat(job.EventPrice))
	if err != nil {
		h.fail("backfill_store")
		return err
	}

	res := &models.AftermathResult{
		EventID:      uuid.NewString(),
		ReportID:     job.ReportID,
		InstrumentID: job.InstrumentID,
		EventDate:    job.EventDate,
		ComputedAt:   h.now().UTC(),
		Summary:      summary,
	}
	if err := h.publisher.PublishAftermath(ctx, res); err != nil {
		h.fail("backfill_publish")
		return fmt.Errorf("publish aftermath for %s: %w", job.ReportID, err)
	}

	outcome := "computed"
	if summary == nil {
		outcome = "unavailable"
	}
	svcmetrics.BackfillProcessed.WithLabelValues(outcome).Inc()
	h.l.Info("aftermath backfilled",
		applogger.String("report_id", job.ReportID),
		applogger.String("instrument_id", job.InstrumentID),
		applogger.String("outcome", outcome),
	)
	return nil
}

func (h *AftermathBackfillHandler) fail(kind string) {
	h.metrics.RecordError(kind)
	svcmetrics.BackfillProcessed.WithLabelValues("failed").Inc()
}

var _ pkgkafka.MessageHandler = (*AftermathBackfillHandler)(nil)
