package analogs

import (
	"github.com/shopspring/decimal"

	"StockAnalog/internal/domain/models"
)

// SummarizeAftermath measures how an event played out from the observations
// that followed it (ascending). It returns nil when eventPrice is not positive
// or nothing has been observed yet; otherwise each horizon is filled only
// when enough observations exist to reach it.
func SummarizeAftermath(cfg Config, eventPrice decimal.Decimal, after []models.PriceObservation) *models.AftermathSummary {
	if !eventPrice.IsPositive() || len(after) == 0 {
		return nil
	}

	s := &models.AftermathSummary{}
	if len(after) >= cfg.ShortHorizon {
		v := PercentChange(eventPrice, after[cfg.ShortHorizon-1].Price)
		s.After1WPct = &v
	}
	if len(after) >= cfg.MediumHorizon {
		v := PercentChange(eventPrice, after[cfg.MediumHorizon-1].Price)
		s.After1MPct = &v
	}

	window := after
	if len(window) > cfg.RecoveryWindow {
		window = window[:cfg.RecoveryWindow]
	}
	for i, o := range window {
		if o.Price.GreaterThanOrEqual(eventPrice) {
			day := i + 1
			s.RecoveryDay = &day
			break
		}
	}
	return s
}
