package http

import (
	"time"

	xutil "StockAnalog/pkg/util"
)

// ParseDateParam parses a query date ("2024-01-15", RFC3339 or unix seconds).
// Bare dates are read in loc.
func ParseDateParam(field, s string, loc *time.Location) (time.Time, error) {
	t, ok := xutil.ParseTimeIn(s, loc)
	if !ok {
		return time.Time{}, BadRequestErrorf(field, "%s must be a date (YYYY-MM-DD) or RFC3339 timestamp", field).
			WithParam("value", s)
	}
	return t, nil
}
