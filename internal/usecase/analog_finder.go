package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"StockAnalog/internal/domain/models"
	domrepo "StockAnalog/internal/domain/repository"
	"StockAnalog/internal/services/analogs"
	applogger "StockAnalog/pkg/logger"
	pkgmetrics "StockAnalog/pkg/metrics"
)

// AnalogFinder selects, ranks and enriches historical analogs of a price move.
// It is read-only and safe for concurrent use.
type AnalogFinder struct {
	store   domrepo.ObservationStore
	cfg     analogs.Config
	metrics domrepo.Metrics
	l       *applogger.Logger
	now     func() time.Time
	timeout time.Duration
}

// FinderOption configures AnalogFinder.
type FinderOption func(*AnalogFinder)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) FinderOption {
	return func(f *AnalogFinder) { f.now = now }
}

func WithMetrics(m domrepo.Metrics) FinderOption {
	return func(f *AnalogFinder) { f.metrics = m }
}

func WithLogger(l *applogger.Logger) FinderOption {
	return func(f *AnalogFinder) { f.l = l }
}

// WithTimeout bounds a whole FindAnalogs call. Zero or negative leaves the
// caller's deadline in charge.
func WithTimeout(d time.Duration) FinderOption {
	return func(f *AnalogFinder) { f.timeout = d }
}

func NewAnalogFinder(store domrepo.ObservationStore, cfg analogs.Config, opts ...FinderOption) (*AnalogFinder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analog config: %w", err)
	}
	f := &AnalogFinder{
		store:   store,
		cfg:     cfg,
		metrics: pkgmetrics.Nop{},
		l:       applogger.Nop(),
		now:     time.Now,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Config returns the engine tuning in use.
func (f *AnalogFinder) Config() analogs.Config { return f.cfg }

// AnalogQuery describes the reference move to find analogs for.
type AnalogQuery struct {
	InstrumentID string
	ChangePct    float64
	Volume       int64
	ExcludeDate  *time.Time
}

// FindAnalogs runs selection, ranking and trend enrichment in one call.
func (f *AnalogFinder) FindAnalogs(ctx context.Context, q AnalogQuery) ([]models.AnalogWithTrend, error) {
	if q.InstrumentID == "" {
		return nil, fmt.Errorf("instrument id required")
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cands, err := f.FindCandidates(ctx, q.InstrumentID, q.ChangePct, q.Volume, q.ExcludeDate)
	if err != nil {
		return nil, err
	}
	ranked := analogs.Rank(f.cfg, cands)
	out, err := f.WithTrends(ctx, q.InstrumentID, ranked)
	if err != nil {
		return nil, err
	}
	f.metrics.RecordAnalogs(q.InstrumentID, len(out))
	f.l.Debug("analogs found",
		applogger.String("instrument_id", q.InstrumentID),
		applogger.Float64("change_pct", q.ChangePct),
		applogger.Int("candidates", len(cands)),
		applogger.Int("analogs", len(out)),
	)
	return out, nil
}

// FindCandidates returns every scored observation of the instrument that is
// old enough, close enough in magnitude and outside the exclusion radius.
func (f *AnalogFinder) FindCandidates(ctx context.Context, instrumentID string, refPct float64, refVol int64, excludeDate *time.Time) ([]models.MatchCandidate, error) {
	start := time.Now()
	low, high := analogs.Window(f.cfg, refPct)
	rows, err := f.store.FindInRange(ctx, instrumentID, low, high, f.cfg.Cutoff(f.now()))
	f.metrics.RecordQuery("find_in_range", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordError("store")
		return nil, fmt.Errorf("find candidates for %s: %w", instrumentID, err)
	}

	out := make([]models.MatchCandidate, 0, len(rows))
	for _, o := range rows {
		if !analogs.InRange(f.cfg, refPct, o.ChangePct) {
			continue
		}
		if excludeDate != nil && analogs.DayDistance(o.CapturedAt, *excludeDate) <= f.cfg.ExcludeRadiusDays {
			continue
		}
		out = append(out, models.MatchCandidate{
			Date:      o.CapturedAt,
			ChangePct: o.ChangePct,
			Volume:    o.Volume,
			Price:     o.Price,
			Score:     analogs.Score(f.cfg, refPct, refVol, o.ChangePct, o.Volume),
		})
	}
	f.metrics.RecordCandidates(instrumentID, len(out))
	return out, nil
}

// TrendAfter returns the cumulative change path over the first horizon
// observations strictly after anchor.
func (f *AnalogFinder) TrendAfter(ctx context.Context, instrumentID string, anchor time.Time, horizon int) ([]models.TrendPoint, error) {
	if horizon <= 0 {
		return []models.TrendPoint{}, nil
	}
	obs, err := f.after(ctx, instrumentID, anchor, horizon)
	if err != nil {
		return nil, err
	}
	return analogs.BuildTrend(obs), nil
}

// WithTrends attaches short and medium trends plus an aftermath to each
// ranked candidate. Input order is preserved.
func (f *AnalogFinder) WithTrends(ctx context.Context, instrumentID string, candidates []models.MatchCandidate) ([]models.AnalogWithTrend, error) {
	out := make([]models.AnalogWithTrend, len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}

	limit := f.cfg.AftermathLimit()
	errs := make([]error, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := candidates[i]
			obs, err := f.after(ctx, instrumentID, c.Date, limit)
			if err != nil {
				errs[i] = err
				return
			}
			short := analogs.BuildTrend(head(obs, f.cfg.ShortHorizon))
			out[i] = models.AnalogWithTrend{
				MatchCandidate:   c,
				ShortTrend:       short,
				MediumTrend:      analogs.BuildTrend(head(obs, f.cfg.MediumHorizon)),
				InsufficientData: len(short) < f.cfg.ShortHorizon,
				Aftermath:        analogs.SummarizeAftermath(f.cfg, c.Price, obs),
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Aftermath summarizes how the instrument moved after a reference event.
// A nil summary with a nil error means the event cannot be measured yet.
func (f *AnalogFinder) Aftermath(ctx context.Context, instrumentID string, eventDate time.Time, eventPrice decimal.Decimal) (*models.AftermathSummary, error) {
	if !eventPrice.IsPositive() {
		return nil, nil
	}
	obs, err := f.after(ctx, instrumentID, eventDate, f.cfg.AftermathLimit())
	if err != nil {
		return nil, err
	}
	return analogs.SummarizeAftermath(f.cfg, eventPrice, obs), nil
}

// EventPrice looks up the price observed at eventDate. When nothing was
// captured at that instant, the first observation of the same calendar day
// (in eventDate's location) is used. It returns zero when there is neither.
func (f *AnalogFinder) EventPrice(ctx context.Context, instrumentID string, eventDate time.Time) (decimal.Decimal, error) {
	o, ok, err := f.store.PriceAt(ctx, instrumentID, eventDate)
	if err != nil {
		f.metrics.RecordError("store")
		return decimal.Zero, fmt.Errorf("event price for %s: %w", instrumentID, err)
	}
	if ok {
		return o.Price, nil
	}

	y, m, d := eventDate.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, eventDate.Location())
	obs, err := f.after(ctx, instrumentID, dayStart.Add(-time.Millisecond), 1)
	if err != nil {
		return decimal.Zero, err
	}
	if len(obs) == 0 || !obs[0].CapturedAt.Before(dayStart.AddDate(0, 0, 1)) {
		return decimal.Zero, nil
	}
	return obs[0].Price, nil
}

func (f *AnalogFinder) after(ctx context.Context, instrumentID string, anchor time.Time, limit int) ([]models.PriceObservation, error) {
	start := time.Now()
	obs, err := f.store.ObservationsAfter(ctx, instrumentID, anchor, limit)
	f.metrics.RecordQuery("observations_after", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordError("store")
		return nil, fmt.Errorf("observations after %s for %s: %w", anchor.Format(time.RFC3339), instrumentID, err)
	}
	return obs, nil
}

func head(obs []models.PriceObservation, n int) []models.PriceObservation {
	if len(obs) > n {
		return obs[:n]
	}
	return obs
}
