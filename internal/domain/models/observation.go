package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one committed price snapshot for an instrument.
// Rows are produced upstream; the analog engine only reads them.
type PriceObservation struct {
	InstrumentID string          `json:"instrument_id" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	ChangePct    float64         `json:"change_pct"`
	Volume       int64           `json:"volume" validate:"gte=0"`
	CapturedAt   time.Time       `json:"captured_at" validate:"required"`
}
