package models

import "time"

// AftermathJob asks for the aftermath of a past reference event.
// The report pipeline emits it once the event is old enough to be measured.
type AftermathJob struct {
	ReportID     string    `json:"report_id" validate:"required"`
	InstrumentID string    `json:"instrument_id" validate:"required"`
	EventDate    time.Time `json:"event_date" validate:"required"`
	EventPrice   float64   `json:"event_price" validate:"gte=0"`
}

// AftermathResult is the answer to an AftermathJob.
// Note: Summary is nil when the event price is unusable or nothing was observed yet.
type AftermathResult struct {
	EventID      string
	ReportID     string
	InstrumentID string
	EventDate    time.Time
	ComputedAt   time.Time
	Summary      *AftermathSummary
}
