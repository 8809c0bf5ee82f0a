package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockAnalog/internal/domain/models"
	domrepo "StockAnalog/internal/domain/repository"
	pkgch "StockAnalog/pkg/clickhouse"
	applogger "StockAnalog/pkg/logger"
)

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.ObservationStore = (*CHObservationStore)(nil)

func NewCHObservationStore(ch *pkgch.Client, table string) *CHObservationStore {
	return &CHObservationStore{db: ch.DB(), table: pkgch.QualifiedTable(ch.Database(), table)}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHObservationStore) FindInRange(ctx context.Context, instrumentID string, minChange, maxChange float64, capturedBefore time.Time) ([]models.PriceObservation, error) {
	start := time.Now()
	const qtpl = `
        SELECT instrument_id, price, change_pct, volume, captured_at
        FROM %s FINAL
        WHERE instrument_id = ? AND change_pct >= ? AND change_pct <= ? AND captured_at < ?
        ORDER BY captured_at ASC
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), instrumentID, minChange, maxChange, capturedBefore.UTC())
	if err != nil {
		s.logError("clickhouse find_in_range query error", instrumentID, err)
		return nil, fmt.Errorf("find in range: %w", err)
	}
	defer rows.Close()

	out, err := s.scan(rows, 64)
	if err != nil {
		s.logError("clickhouse find_in_range scan error", instrumentID, err)
		return nil, err
	}
	if s.l != nil {
		s.l.Debug("clickhouse find_in_range ok",
			applogger.String("instrument_id", instrumentID),
			applogger.Float64("min_change", minChange),
			applogger.Float64("max_change", maxChange),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationStore) ObservationsAfter(ctx context.Context, instrumentID string, anchor time.Time, limit int) ([]models.PriceObservation, error) {
	if limit <= 0 {
		return []models.PriceObservation{}, nil
	}
	start := time.Now()
	const qtpl = `
        SELECT instrument_id, price, change_pct, volume, captured_at
        FROM %s FINAL
        WHERE instrument_id = ? AND captured_at > ?
        ORDER BY captured_at ASC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), instrumentID, anchor.UTC(), limit)
	if err != nil {
		s.logError("clickhouse observations_after query error", instrumentID, err)
		return nil, fmt.Errorf("observations after: %w", err)
	}
	defer rows.Close()

	out, err := s.scan(rows, limit)
	if err != nil {
		s.logError("clickhouse observations_after scan error", instrumentID, err)
		return nil, err
	}
	if s.l != nil {
		s.l.Debug("clickhouse observations_after ok",
			applogger.String("instrument_id", instrumentID),
			applogger.Time("anchor", anchor),
			applogger.Int("limit", limit),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationStore) PriceAt(ctx context.Context, instrumentID string, ts time.Time) (models.PriceObservation, bool, error) {
	const qtpl = `
        SELECT instrument_id, price, change_pct, volume, captured_at
        FROM %s FINAL
        WHERE instrument_id = ? AND captured_at = ?
        LIMIT 1
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), instrumentID, ts.UTC())
	if err != nil {
		s.logError("clickhouse price_at query error", instrumentID, err)
		return models.PriceObservation{}, false, fmt.Errorf("price at: %w", err)
	}
	defer rows.Close()

	out, err := s.scan(rows, 1)
	if err != nil {
		return models.PriceObservation{}, false, err
	}
	if len(out) == 0 {
		return models.PriceObservation{}, false, nil
	}
	return out[0], true, nil
}

// InsertBatch writes observations in multi-row VALUES chunks.
func (s *CHObservationStore) InsertBatch(ctx context.Context, obs []models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, o := range obs[start:end] {
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, o.InstrumentID, o.Price, o.ChangePct, o.Volume, o.CapturedAt.UTC())
		}
		q := fmt.Sprintf("INSERT INTO %s (instrument_id, price, change_pct, volume, captured_at) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse insert_batch error",
					applogger.String("table", s.table),
					applogger.Int("rows", end-start),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert batch: %w", err)
		}
	}
	return nil
}

func (s *CHObservationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *CHObservationStore) Close() error { return nil }

func (s *CHObservationStore) scan(rows *sql.Rows, capHint int) ([]models.PriceObservation, error) {
	out := make([]models.PriceObservation, 0, capHint)
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.InstrumentID, &o.Price, &o.ChangePct, &o.Volume, &o.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.CapturedAt = o.CapturedAt.UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHObservationStore) logError(msg, instrumentID string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("instrument_id", instrumentID),
		applogger.Error(err),
	)
}
