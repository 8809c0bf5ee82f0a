package models

import "github.com/shopspring/decimal"

// Requests for analog HTTP endpoints. Times are kept as strings and parsed by the handler.

type AnalogsRequest struct {
	InstrumentID string  `query:"instrument_id" json:"instrument_id" validate:"required,max=64"`
	ChangePct    float64 `query:"change_pct" json:"change_pct" validate:"gte=-100,lte=1000"`
	Volume       int64   `query:"volume" json:"volume" default:"0" validate:"gte=0"`
	ExcludeDate  string  `query:"exclude_date" json:"exclude_date"`
}

type AftermathRequest struct {
	InstrumentID string  `query:"instrument_id" json:"instrument_id" validate:"required,max=64"`
	EventDate    string  `query:"event_date" json:"event_date" validate:"required"`
	EventPrice   float64 `query:"event_price" json:"event_price"`
}

type TrendRequest struct {
	InstrumentID string `query:"instrument_id" json:"instrument_id" validate:"required,max=64"`
	AnchorDate   string `query:"anchor_date" json:"anchor_date" validate:"required"`
	Horizon      int    `query:"horizon" json:"horizon" default:"20" validate:"gte=1,lte=250"`
}

// Responses. Dates are calendar days in the market location.

type TrendPointDTO struct {
	Day       int     `json:"day"`
	ChangePct float64 `json:"change_pct"`
}

type AftermathDTO struct {
	After1WPct  *float64 `json:"after_1w_pct"`
	After1MPct  *float64 `json:"after_1m_pct"`
	RecoveryDay *int     `json:"recovery_day"`
}

type AnalogDTO struct {
	Date             string          `json:"date"`
	ChangePct        float64         `json:"change_pct"`
	Volume           int64           `json:"volume"`
	Price            decimal.Decimal `json:"price"`
	Score            float64         `json:"score"`
	ShortTrend       []TrendPointDTO `json:"short_trend"`
	MediumTrend      []TrendPointDTO `json:"medium_trend"`
	InsufficientData bool            `json:"insufficient_data"`
	Aftermath        *AftermathDTO   `json:"aftermath"`
}

type AnalogsResponse struct {
	InstrumentID string      `json:"instrument_id"`
	ChangePct    float64     `json:"change_pct"`
	Analogs      []AnalogDTO `json:"analogs"`
	Message      string      `json:"message,omitempty"`
}

type AftermathResponse struct {
	InstrumentID string          `json:"instrument_id"`
	EventDate    string          `json:"event_date"`
	EventPrice   decimal.Decimal `json:"event_price"`
	Summary      *AftermathDTO   `json:"summary"`
}

type TrendResponse struct {
	InstrumentID string          `json:"instrument_id"`
	AnchorDate   string          `json:"anchor_date"`
	Horizon      int             `json:"horizon"`
	Points       []TrendPointDTO `json:"points"`
}
