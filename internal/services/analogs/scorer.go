package analogs

import "math"

// Score returns the dissimilarity between a reference move and a candidate.
// Change divergence is in raw percentage points. Volume divergence is
// |1 - candVol/refVol| and collapses to 0 when refVol is not positive.
func Score(cfg Config, refPct float64, refVol int64, candPct float64, candVol int64) float64 {
	changeDiff := math.Abs(refPct - candPct)
	volumeDiff := 0.0
	if refVol > 0 {
		volumeDiff = math.Abs(1.0 - float64(candVol)/float64(refVol))
	}
	return changeDiff*cfg.ChangeWeight + volumeDiff*cfg.VolumeWeight
}

// windowSlack absorbs float rounding so a change exactly ChangeRange away
// (0.7 vs 2.2) stays inside the window.
const windowSlack = 1e-9

// Window returns the inclusive change bounds around refPct. Stores filter on
// the same bounds, so an edge row is kept or dropped by both sides alike.
func Window(cfg Config, refPct float64) (low, high float64) {
	return refPct - cfg.ChangeRange - windowSlack, refPct + cfg.ChangeRange + windowSlack
}

// InRange reports whether a candidate change falls inside the magnitude window.
func InRange(cfg Config, refPct, candPct float64) bool {
	low, high := Window(cfg, refPct)
	return candPct >= low && candPct <= high
}
