package analogs

import (
	"fmt"
	"math"
	"time"
)

// Config holds the tuning constants of the analog engine.
// It is passed by value so several market tunings can live side by side.
type Config struct {
	ChangeRange       float64 // ±percentage points around the reference change
	MinDaysAgo        int     // candidates must be at least this old
	MaxResults        int
	DedupDays         int // cluster radius for consecutive-day events
	ExcludeRadiusDays int // radius around exclude_date; defaults to DedupDays
	ChangeWeight      float64
	VolumeWeight      float64
	ShortHorizon      int // observations, ~1 week
	MediumHorizon     int // observations, ~1 month
	RecoveryWindow    int // observations scanned for recovery_day
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		ChangeRange:       1.5,
		MinDaysAgo:        30,
		MaxResults:        3,
		DedupDays:         2,
		ExcludeRadiusDays: 2,
		ChangeWeight:      0.6,
		VolumeWeight:      0.4,
		ShortHorizon:      5,
		MediumHorizon:     20,
		RecoveryWindow:    30,
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.ChangeRange < 0 {
		return fmt.Errorf("change_range must not be negative, got %v", c.ChangeRange)
	}
	if c.MinDaysAgo < 0 {
		return fmt.Errorf("min_days_ago must not be negative, got %d", c.MinDaysAgo)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be at least 1, got %d", c.MaxResults)
	}
	if c.DedupDays < 0 || c.ExcludeRadiusDays < 0 {
		return fmt.Errorf("dedup_days and exclude_radius_days must not be negative")
	}
	if c.ChangeWeight < 0 || c.VolumeWeight < 0 {
		return fmt.Errorf("weights must not be negative")
	}
	if math.Abs(c.ChangeWeight+c.VolumeWeight-1.0) > 1e-9 {
		return fmt.Errorf("change_weight + volume_weight must equal 1, got %v", c.ChangeWeight+c.VolumeWeight)
	}
	if c.ShortHorizon < 1 || c.MediumHorizon < c.ShortHorizon {
		return fmt.Errorf("horizons must satisfy 1 <= short (%d) <= medium (%d)", c.ShortHorizon, c.MediumHorizon)
	}
	if c.RecoveryWindow < 1 {
		return fmt.Errorf("recovery_window must be at least 1, got %d", c.RecoveryWindow)
	}
	return nil
}

// Cutoff returns the newest capture time a candidate may have.
func (c Config) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.MinDaysAgo)
}

// AftermathLimit is how many post-event observations Aftermath needs to fetch.
func (c Config) AftermathLimit() int {
	n := c.RecoveryWindow
	if c.MediumHorizon > n {
		n = c.MediumHorizon
	}
	return n
}

// DayDistance is the whole number of days between a and b, ignoring order.
func DayDistance(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
