package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockAnalog/internal/domain/models"
	domrepo "StockAnalog/internal/domain/repository"
	pkgclickhouse "StockAnalog/pkg/clickhouse"
	applogger "StockAnalog/pkg/logger"
	pkgsqlite "StockAnalog/pkg/sqlite"
)

// SQLiteObservationStore implements ObservationStore on an embedded SQLite file.
// captured_at is stored as unix milliseconds so range predicates compare integers.
type SQLiteObservationStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.ObservationStore = (*SQLiteObservationStore)(nil)

// NewSQLiteObservationStore creates the table if needed.
func NewSQLiteObservationStore(ctx context.Context, c *pkgsqlite.Client, table string) (*SQLiteObservationStore, error) {
	if table == "" {
		table = pkgclickhouse.DefaultTable
	}
	s := &SQLiteObservationStore{db: c.DB(), table: table}
	if err := c.InitSchema(ctx, s.schema()); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLogger injects a structured logger.
func (s *SQLiteObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *SQLiteObservationStore) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			instrument_id TEXT    NOT NULL,
			price         TEXT    NOT NULL,
			change_pct    REAL    NOT NULL,
			volume        INTEGER NOT NULL DEFAULT 0,
			captured_at   INTEGER NOT NULL,
			PRIMARY KEY (instrument_id, captured_at)
		)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_change ON %s(instrument_id, change_pct)`, s.table, s.table),
	}
}

func (s *SQLiteObservationStore) FindInRange(ctx context.Context, instrumentID string, minChange, maxChange float64, capturedBefore time.Time) ([]models.PriceObservation, error) {
	start := time.Now()
	q := fmt.Sprintf(`
		SELECT instrument_id, price, change_pct, volume, captured_at
		FROM %s
		WHERE instrument_id = ? AND change_pct >= ? AND change_pct <= ? AND captured_at < ?
		ORDER BY captured_at ASC`, s.table)
	rows, err := s.db.QueryContext(ctx, q, instrumentID, minChange, maxChange, capturedBefore.UnixMilli())
	if err != nil {
		s.logError("sqlite find_in_range query error", instrumentID, err)
		return nil, fmt.Errorf("find in range: %w", err)
	}
	defer rows.Close()

	out, err := scanSQLiteRows(rows, 64)
	if err != nil {
		s.logError("sqlite find_in_range scan error", instrumentID, err)
		return nil, err
	}
	if s.l != nil {
		s.l.Debug("sqlite find_in_range ok",
			applogger.String("instrument_id", instrumentID),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *SQLiteObservationStore) ObservationsAfter(ctx context.Context, instrumentID string, anchor time.Time, limit int) ([]models.PriceObservation, error) {
	if limit <= 0 {
		return []models.PriceObservation{}, nil
	}
	q := fmt.Sprintf(`
		SELECT instrument_id, price, change_pct, volume, captured_at
		FROM %s
		WHERE instrument_id = ? AND captured_at > ?
		ORDER BY captured_at ASC
		LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, instrumentID, anchor.UnixMilli(), limit)
	if err != nil {
		s.logError("sqlite observations_after query error", instrumentID, err)
		return nil, fmt.Errorf("observations after: %w", err)
	}
	defer rows.Close()

	out, err := scanSQLiteRows(rows, limit)
	if err != nil {
		s.logError("sqlite observations_after scan error", instrumentID, err)
		return nil, err
	}
	return out, nil
}

func (s *SQLiteObservationStore) PriceAt(ctx context.Context, instrumentID string, ts time.Time) (models.PriceObservation, bool, error) {
	q := fmt.Sprintf(`
		SELECT instrument_id, price, change_pct, volume, captured_at
		FROM %s
		WHERE instrument_id = ? AND captured_at = ?
		LIMIT 1`, s.table)
	rows, err := s.db.QueryContext(ctx, q, instrumentID, ts.UnixMilli())
	if err != nil {
		return models.PriceObservation{}, false, fmt.Errorf("price at: %w", err)
	}
	defer rows.Close()

	out, err := scanSQLiteRows(rows, 1)
	if err != nil {
		return models.PriceObservation{}, false, err
	}
	if len(out) == 0 {
		return models.PriceObservation{}, false, nil
	}
	return out[0], true, nil
}

// InsertBatch upserts observations in one transaction.
func (s *SQLiteObservationStore) InsertBatch(ctx context.Context, obs []models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (instrument_id, price, change_pct, volume, captured_at)
		VALUES (?, ?, ?, ?, ?)`, s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.InstrumentID, o.Price.String(), o.ChangePct, o.Volume, o.CapturedAt.UnixMilli()); err != nil {
			s.logError("sqlite insert_batch error", o.InstrumentID, err)
			return fmt.Errorf("insert observation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteObservationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the database belongs to pkg/sqlite.Client.
func (s *SQLiteObservationStore) Close() error { return nil }

func (s *SQLiteObservationStore) logError(msg, instrumentID string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("instrument_id", instrumentID),
		applogger.Error(err),
	)
}

func scanSQLiteRows(rows *sql.Rows, capHint int) ([]models.PriceObservation, error) {
	out := make([]models.PriceObservation, 0, capHint)
	for rows.Next() {
		var (
			o  models.PriceObservation
			ms int64
		)
		if err := rows.Scan(&o.InstrumentID, &o.Price, &o.ChangePct, &o.Volume, &ms); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.CapturedAt = time.UnixMilli(ms).UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
