package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchCandidate is a historical observation judged comparable to a reference move.
// Lower Score means more similar; 0 is an exact match on change and volume.
type MatchCandidate struct {
	Date      time.Time
	ChangePct float64
	Volume    int64
	Price     decimal.Decimal
	Score     float64
}

// TrendPoint is the cumulative change Day observations after an anchor.
// Day is an ordinal over actual observations, not a calendar day.
type TrendPoint struct {
	Day       int
	ChangePct float64
}

// AftermathSummary describes how price behaved after an event.
// Each field is nil when too few observations exist to reach that horizon.
type AftermathSummary struct {
	After1WPct  *float64
	After1MPct  *float64
	RecoveryDay *int
}

// AnalogWithTrend is a ranked candidate enriched with its post-event trajectory.
type AnalogWithTrend struct {
	MatchCandidate
	ShortTrend       []TrendPoint
	MediumTrend      []TrendPoint
	InsufficientData bool
	Aftermath        *AftermathSummary
}
