package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockAnalog/pkg/config"
	xhttp "StockAnalog/pkg/http"
	pkgkafka "StockAnalog/pkg/kafka"
	applogger "StockAnalog/pkg/logger"
)

// Sweeper drops idle per-client state, returning how many entries went away.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// Consumer is the part of pkg/kafka.Consumer the app drives.
type Consumer interface {
	RegisterHandler(pkgkafka.MessageHandler)
	Start() error
	Stop(ctx context.Context) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   Consumer
	handler    pkgkafka.MessageHandler

	sweeper    Sweeper
	sweepEvery time.Duration
	sweepIdle  time.Duration

	wg sync.WaitGroup
}

// Option configures App.
type Option func(*App)

func WithLogger(l *applogger.Logger) Option {
	return func(a *App) { a.l = l }
}

// WithConsumer runs h on the Kafka consumer next to the HTTP server.
func WithConsumer(c Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.handler = h
	}
}

// WithLimiterSweep periodically evicts rate limiter entries idle for longer than idle.
func WithLimiterSweep(s Sweeper, every, idle time.Duration) Option {
	return func(a *App) {
		a.sweeper = s
		a.sweepEvery = every
		a.sweepIdle = idle
	}
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, httpServer *xhttp.Server, opts ...Option) *App {
	a := &App{cfg: cfg, httpServer: httpServer, l: applogger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.consumer != nil && a.handler != nil {
		a.consumer.RegisterHandler(a.handler)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		a.l.Info("aftermath backfill consuming", applogger.String("topic", a.handler.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		if a.consumer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if serr := a.consumer.Stop(ctx); serr != nil {
				a.l.Warn("kafka consumer stop error", applogger.Error(serr))
			}
		}
		return fmt.Errorf("http server: %w", err)
	}

	if a.sweeper != nil && a.sweepEvery > 0 {
		a.wg.Add(1)
		go a.sweepLoop(ctx)
	}

	a.l.Info("stockanalog started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Store.Backend),
		applogger.String("addr", a.httpServer.Addr()),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) sweepLoop(ctx context.Context) {
	defer a.wg.Done()
	t := time.NewTicker(a.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.sweeper.Sweep(a.sweepIdle); n > 0 {
				a.l.Debug("rate limiter swept", applogger.Int("evicted", n))
			}
		}
	}
}

// shutdown stops intake first (HTTP, consumer). Clients are closed by the
// caller's cleanup afterwards.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.wg.Wait()
	a.l.Info("shutdown complete")
	return firstErr
}
