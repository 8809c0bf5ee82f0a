package analogs

import (
	"github.com/shopspring/decimal"

	"StockAnalog/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// PercentChange returns (to - from) / from * 100 rounded to 2 places.
// Callers must guarantee from is positive.
func PercentChange(from, to decimal.Decimal) float64 {
	return to.Sub(from).Div(from).Mul(hundred).Round(2).InexactFloat64()
}

// BuildTrend turns post-anchor observations (ascending, already capped to the
// horizon) into cumulative change points. The first observation is the
// baseline, so day 1 is always 0.
func BuildTrend(obs []models.PriceObservation) []models.TrendPoint {
	points := make([]models.TrendPoint, 0, len(obs))
	if len(obs) == 0 {
		return points
	}
	base := obs[0].Price
	for i, o := range obs {
		pct := 0.0
		if i > 0 && base.IsPositive() {
			pct = PercentChange(base, o.Price)
		}
		points = append(points, models.TrendPoint{Day: i + 1, ChangePct: pct})
	}
	return points
}
