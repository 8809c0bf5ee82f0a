package api

import (
	"context"
	"errors"
	"math"
	"time"

	models "StockAnalog/internal/domain/models"
	domrepo "StockAnalog/internal/domain/repository"
	svcmetrics "StockAnalog/internal/service/metrics"
	"StockAnalog/internal/usecase"
	"StockAnalog/pkg/cache"
	xhttp "StockAnalog/pkg/http"
	xlogger "StockAnalog/pkg/logger"
	pkgmetrics "StockAnalog/pkg/metrics"
	xutil "StockAnalog/pkg/util"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	noAnalogsMessage   = "no similar historical cases found"
	statusClientClosed = 499
)

// AnalogsEchoHandler serves the read API over the analog engine.
type AnalogsEchoHandler struct {
	logger   *xlogger.Logger
	finder   *usecase.AnalogFinder
	store    domrepo.ObservationStore
	cache    cache.Service
	cacheTTL time.Duration
	metrics  domrepo.Metrics
	loc      *time.Location
}

// HandlerOption configures AnalogsEchoHandler.
type HandlerOption func(*AnalogsEchoHandler)

// WithCache caches analog and aftermath responses for ttl.
func WithCache(c cache.Service, ttl time.Duration) HandlerOption {
	return func(h *AnalogsEchoHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

func WithHandlerMetrics(m domrepo.Metrics) HandlerOption {
	return func(h *AnalogsEchoHandler) { h.metrics = m }
}

// WithLocation sets the market timezone used for bare dates.
func WithLocation(loc *time.Location) HandlerOption {
	return func(h *AnalogsEchoHandler) {
		if loc != nil {
			h.loc = loc
		}
	}
}

func NewAnalogsEchoHandler(logger *xlogger.Logger, finder *usecase.AnalogFinder, store domrepo.ObservationStore, opts ...HandlerOption) *AnalogsEchoHandler {
	h := &AnalogsEchoHandler{
		logger:  logger,
		finder:  finder,
		store:   store,
		metrics: pkgmetrics.Nop{},
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = xlogger.Nop()
	}
	return h
}

func (h *AnalogsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analogs", h.Analogs)
	g.GET("/aftermath", h.Aftermath)
	g.GET("/trend", h.Trend)
	e.GET("/healthz", h.Health)
}

func (h *AnalogsEchoHandler) Analogs(c echo.Context) error {
	defer observe("analogs", time.Now())
	req := &models.AnalogsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q := usecase.AnalogQuery{InstrumentID: req.InstrumentID, ChangePct: req.ChangePct, Volume: req.Volume}
	if req.ExcludeDate != "" {
		t, err := xhttp.ParseDateParam("exclude_date", req.ExcludeDate, h.loc)
		if err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		q.ExcludeDate = &t
	}

	ctx := c.Request().Context()
	key := cache.GenerateKeyWithParams("analogs", req.InstrumentID, req.ChangePct, req.Volume, req.ExcludeDate)
	res := &models.AnalogsResponse{}
	if h.cached(ctx, key, res) {
		return xhttp.SuccessResponse(c, res)
	}

	found, err := h.finder.FindAnalogs(ctx, q)
	if err != nil {
		return h.fail(c, "analogs", err)
	}

	res = &models.AnalogsResponse{
		InstrumentID: req.InstrumentID,
		ChangePct:    req.ChangePct,
		Analogs:      make([]models.AnalogDTO, 0, len(found)),
	}
	for _, a := range found {
		res.Analogs = append(res.Analogs, h.analogDTO(a))
	}
	if len(res.Analogs) == 0 {
		res.Message = noAnalogsMessage
	}
	h.remember(ctx, key, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalogsEchoHandler) Aftermath(c echo.Context) error {
	defer observe("aftermath", time.Now())
	req := &models.AftermathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	eventDate, err := xhttp.ParseDateParam("event_date", req.EventDate, h.loc)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	ctx := c.Request().Context()
	key := cache.GenerateKeyWithParams("aftermath", req.InstrumentID, req.EventDate, req.EventPrice)
	res := &models.AftermathResponse{}
	if h.cached(ctx, key, res) {
		return xhttp.SuccessResponse(c, res)
	}

	price := decimal.NewFromFloat(req.EventPrice)
	if req.EventPrice == 0 {
		if price, err = h.finder.EventPrice(ctx, req.InstrumentID, eventDate); err != nil {
			return h.fail(c, "aftermath", err)
		}
	}

	summary, err := h.finder.Aftermath(ctx, req.InstrumentID, h.anchor(req.EventDate, eventDate), price)
	if err != nil {
		return h.fail(c, "aftermath", err)
	}
	res = &models.AftermathResponse{
		InstrumentID: req.InstrumentID,
		EventDate:    h.day(eventDate),
		EventPrice:   price,
		Summary:      aftermathDTO(summary),
	}
	h.remember(ctx, key, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalogsEchoHandler) Trend(c echo.Context) error {
	defer observe("trend", time.Now())
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	anchor, err := xhttp.ParseDateParam("anchor_date", req.AnchorDate, h.loc)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	points, err := h.finder.TrendAfter(c.Request().Context(), req.InstrumentID, h.anchor(req.AnchorDate, anchor), req.Horizon)
	if err != nil {
		return h.fail(c, "trend", err)
	}
	return xhttp.SuccessResponse(c, &models.TrendResponse{
		InstrumentID: req.InstrumentID,
		AnchorDate:   h.day(anchor),
		Horizon:      req.Horizon,
		Points:       trendDTO(points),
	})
}

func (h *AnalogsEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Health(ctx); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("observation store unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// anchor turns a bare date into the last instant of that day so that
// "strictly after" skips the event day's own observation.
func (h *AnalogsEchoHandler) anchor(raw string, t time.Time) time.Time {
	if len(raw) == len(xutil.DateLayout) {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t
}

func (h *AnalogsEchoHandler) day(t time.Time) string {
	return t.In(h.loc).Format(xutil.DateLayout)
}

func (h *AnalogsEchoHandler) cached(ctx context.Context, key string, dest interface{}) bool {
	if h.cache == nil {
		return false
	}
	err := h.cache.Get(ctx, key, dest)
	if err == nil {
		h.metrics.RecordCache(true)
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Warn("cache get failed", xlogger.String("key", key), xlogger.Error(err))
	}
	h.metrics.RecordCache(false)
	return false
}

func (h *AnalogsEchoHandler) remember(ctx context.Context, key string, v interface{}) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, v, h.cacheTTL); err != nil {
		h.logger.Warn("cache set failed", xlogger.String("key", key), xlogger.Error(err))
	}
}

func (h *AnalogsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	svcmetrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	if errors.Is(err, context.Canceled) {
		return c.NoContent(statusClientClosed)
	}
	return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("observation store unavailable").WithError(err))
}

func observe(endpoint string, start time.Time) {
	svcmetrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *AnalogsEchoHandler) analogDTO(a models.AnalogWithTrend) models.AnalogDTO {
	return models.AnalogDTO{
		Date:             h.day(a.Date),
		ChangePct:        a.ChangePct,
		Volume:           a.Volume,
		Price:            a.Price,
		Score:            math.Round(a.Score*1e4) / 1e4,
		ShortTrend:       trendDTO(a.ShortTrend),
		MediumTrend:      trendDTO(a.MediumTrend),
		InsufficientData: a.InsufficientData,
		Aftermath:        aftermathDTO(a.Aftermath),
	}
}

func trendDTO(points []models.TrendPoint) []models.TrendPointDTO {
	out := make([]models.TrendPointDTO, len(points))
	for i, p := range points {
		out[i] = models.TrendPointDTO{Day: p.Day, ChangePct: p.ChangePct}
	}
	return out
}

func aftermathDTO(s *models.AftermathSummary) *models.AftermathDTO {
	if s == nil {
		return nil
	}
	return &models.AftermathDTO{After1WPct: s.After1WPct, After1MPct: s.After1MPct, RecoveryDay: s.RecoveryDay}
}

// ensure the handler satisfies the server contract
var _ xhttp.Handler = (*AnalogsEchoHandler)(nil)
