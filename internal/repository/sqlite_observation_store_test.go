package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalog/internal/domain/models"
	pkgsqlite "StockAnalog/pkg/sqlite"
)

func newTestStore(t *testing.T) *SQLiteObservationStore {
	t.Helper()
	c, err := pkgsqlite.NewClient(pkgsqlite.WithPath(pkgsqlite.MemoryPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	s, err := NewSQLiteObservationStore(context.Background(), c, "")
	require.NoError(t, err)
	return s
}

func obsAt(id string, ts time.Time, price int64, pct float64, vol int64) models.PriceObservation {
	return models.PriceObservation{
		InstrumentID: id,
		Price:        decimal.NewFromInt(price),
		ChangePct:    pct,
		Volume:       vol,
		CapturedAt:   ts,
	}
}

func TestSQLiteFindInRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 1, 2, 6, 30, 0, 0, time.UTC)

	require.NoError(t, s.InsertBatch(ctx, []models.PriceObservation{
		obsAt("AAA", t0, 100, 5.0, 1000),
		obsAt("AAA", t0.AddDate(0, 0, 1), 103, 3.0, 1000),
		obsAt("AAA", t0.AddDate(0, 0, 2), 110, 6.6, 1000),
		obsAt("AAA", t0.AddDate(0, 0, 60), 120, 4.0, 1000),
		obsAt("BBB", t0, 50, 5.0, 1000),
	}))

	got, err := s.FindInRange(ctx, "AAA", 3.5, 6.5, t0.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].ChangePct)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, got[0].CapturedAt.Equal(t0))

	got, err = s.FindInRange(ctx, "AAA", -100, 100, t0.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].CapturedAt.Before(got[i].CapturedAt), "rows must be ascending")
	}
}

func TestSQLiteFindInRangeUnknownInstrument(t *testing.T) {
	s := newTestStore(t)
	got, err := s.FindInRange(context.Background(), "NONE", -10, 10, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteObservationsAfter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var rows []models.PriceObservation
	for i := 0; i < 10; i++ {
		rows = append(rows, obsAt("AAA", t0.AddDate(0, 0, i), int64(100+i), 0, 10))
	}
	require.NoError(t, s.InsertBatch(ctx, rows))

	got, err := s.ObservationsAfter(ctx, "AAA", t0.AddDate(0, 0, 2), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(103)), "anchor itself is excluded")
	assert.True(t, got[2].Price.Equal(decimal.NewFromInt(105)))

	got, err = s.ObservationsAfter(ctx, "AAA", t0.AddDate(0, 0, 9), 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.ObservationsAfter(ctx, "AAA", t0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLitePriceAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC)
	require.NoError(t, s.InsertBatch(ctx, []models.PriceObservation{obsAt("AAA", t0, 70000, 5, 10)}))

	o, ok, err := s.PriceAt(ctx, "AAA", t0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "70000", o.Price.String())

	_, ok, err = s.PriceAt(ctx, "AAA", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteInsertBatchUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertBatch(ctx, []models.PriceObservation{obsAt("AAA", t0, 100, 1, 10)}))
	require.NoError(t, s.InsertBatch(ctx, []models.PriceObservation{obsAt("AAA", t0, 101, 2, 10)}))

	got, err := s.FindInRange(ctx, "AAA", -10, 10, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].ChangePct)
	assert.NoError(t, s.Health(ctx))
}

func TestSQLiteDecimalPricePreserved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	o := obsAt("AAA", t0, 0, 1, 10)
	o.Price = decimal.RequireFromString("123.4567")
	require.NoError(t, s.InsertBatch(ctx, []models.PriceObservation{o}))

	got, err := s.ObservationsAfter(ctx, "AAA", t0.Add(-time.Second), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Price.Equal(o.Price), "got %s", got[0].Price)
}
