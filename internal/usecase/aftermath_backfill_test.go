package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalog/internal/domain/models"
	pkgkafka "StockAnalog/pkg/kafka"
	pkgmetrics "StockAnalog/pkg/metrics"
)

type stubComputer struct {
	summary *models.AftermathSummary
	err     error
	gotID   string
	gotDate time.Time
	gotPx   decimal.Decimal
}

func (s *stubComputer) Aftermath(_ context.Context, id string, d time.Time, px decimal.Decimal) (*models.AftermathSummary, error) {
	s.gotID, s.gotDate, s.gotPx = id, d, px
	return s.summary, s.err
}

type capturePublisher struct {
	got []*models.AftermathResult
	err error
}

func (p *capturePublisher) PublishAftermath(_ context.Context, r *models.AftermathResult) error {
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, r)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

const jobJSON = `{"report_id":"rep-1","instrument_id":"005930","event_date":"2025-03-01T06:30:00Z","event_price":70000}`

func TestBackfillPublishesSummary(t *testing.T) {
	day := 6
	comp := &stubComputer{summary: &models.AftermathSummary{RecoveryDay: &day}}
	pub := &capturePublisher{}
	h := NewAftermathBackfillHandler("aftermath.requests", comp, pub, pkgmetrics.Nop{}, nil)
	h.now = func() time.Time { return now }

	require.NoError(t, h.Handle(context.Background(), []byte(jobJSON)))
	assert.Equal(t, "aftermath.requests", h.Topic())
	assert.Equal(t, "005930", comp.gotID)
	assert.True(t, comp.gotPx.Equal(decimal.NewFromInt(70000)))
	assert.True(t, comp.gotDate.Equal(time.Date(2025, 3, 1, 6, 30, 0, 0, time.UTC)))

	require.Len(t, pub.got, 1)
	res := pub.got[0]
	assert.Equal(t, "rep-1", res.ReportID)
	assert.Equal(t, now, res.ComputedAt)
	_, err := uuid.Parse(res.EventID)
	assert.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 6, *res.Summary.RecoveryDay)
}

func TestBackfillPublishesNullSummary(t *testing.T) {
	pub := &capturePublisher{}
	h := NewAftermathBackfillHandler("t", &stubComputer{}, pub, pkgmetrics.Nop{}, nil)
	require.NoError(t, h.Handle(context.Background(), []byte(jobJSON)))
	require.Len(t, pub.got, 1)
	assert.Nil(t, pub.got[0].Summary)
}

func TestBackfillRejectsBadMessages(t *testing.T) {
	h := NewAftermathBackfillHandler("t", &stubComputer{}, &capturePublisher{}, pkgmetrics.Nop{}, nil)
	ctx := context.Background()
	for _, msg := range []string{
		`{not json`,
		`{"instrument_id":"X","event_date":"2025-03-01T00:00:00Z"}`,
		`{"report_id":"r","instrument_id":"X","event_date":"2025-03-01T00:00:00Z","event_price":-1}`,
	} {
		err := h.Handle(ctx, []byte(msg))
		assert.ErrorIs(t, err, pkgkafka.ErrPermanent, msg)
	}
}

func TestBackfillPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	h := NewAftermathBackfillHandler("t", &stubComputer{err: boom}, &capturePublisher{}, pkgmetrics.Nop{}, nil)
	err := h.Handle(context.Background(), []byte(jobJSON))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, pkgkafka.ErrPermanent)

	h = NewAftermathBackfillHandler("t", &stubComputer{}, &capturePublisher{err: boom}, pkgmetrics.Nop{}, nil)
	err = h.Handle(context.Background(), []byte(jobJSON))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, pkgkafka.ErrPermanent)
}
