package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"StockAnalog/internal/domain/repository"
	"StockAnalog/internal/handler/api"
	internalrepo "StockAnalog/internal/repository"
	svcmetrics "StockAnalog/internal/service/metrics"
	"StockAnalog/internal/service/ratelimit"
	"StockAnalog/internal/usecase"
	"StockAnalog/pkg/cache"
	pkgch "StockAnalog/pkg/clickhouse"
	"StockAnalog/pkg/config"
	xhttp "StockAnalog/pkg/http"
	pkgkafka "StockAnalog/pkg/kafka"
	applogger "StockAnalog/pkg/logger"
	"StockAnalog/pkg/metrics"
	"StockAnalog/pkg/server"
	pkgsqlite "StockAnalog/pkg/sqlite"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideObservationStore opens the configured backend and ensures its schema.
func ProvideObservationStore(cfg *config.Config, l *applogger.Logger) (repository.ObservationStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch repository.NormalizeBackend(cfg.Store.Backend) {
	case repository.BackendSQLite:
		client, err := pkgsqlite.NewClient(
			pkgsqlite.WithPath(cfg.SQLite.Path),
			pkgsqlite.WithWAL(cfg.SQLite.WAL),
			pkgsqlite.WithBusyTimeout(cfg.SQLite.BusyTimeout),
			pkgsqlite.WithCacheSize(cfg.SQLite.CacheSizeMB),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite client: %w", err)
		}
		store, err := internalrepo.NewSQLiteObservationStore(ctx, client, cfg.Store.Table)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("sqlite schema: %w", err)
		}
		store.SetLogger(l)
		l.Info("observation store ready", applogger.String("backend", "sqlite"), applogger.String("path", client.Path()))
		return store, func() { _ = client.Close() }, nil

	default:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		if err := client.EnsurePriceSnapshots(ctx, cfg.Store.Table); err != nil {
			_ = client.Close() // no logger worth using yet; propagate
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		store := internalrepo.NewCHObservationStore(client, cfg.Store.Table)
		store.SetLogger(l)
		l.Info("observation store ready",
			applogger.String("backend", "clickhouse"),
			applogger.String("host", cfg.ClickHouse.Host),
			applogger.String("database", client.Database()),
		)
		return store, func() { _ = client.Close() }, nil
	}
}

// ProvideAnalogFinder creates the analog engine.
func ProvideAnalogFinder(store repository.ObservationStore, cfg *config.Config, m repository.Metrics, l *applogger.Logger) (*usecase.AnalogFinder, error) {
	return usecase.NewAnalogFinder(store, cfg.Analogs(),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithTimeout(cfg.Server.RequestTimeout),
	)
}

// ProvideCache builds the response cache: memory only, or memory in front of Redis.
// Returns nil when caching is disabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
		cache.WithMemoryDefaultTTL(cfg.Cache.Memory.TTL),
	)
	if !cfg.Cache.Redis.Enabled {
		return mem, func() { _ = mem.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		// degrade to memory only
		l.Warn("redis unavailable, using memory cache", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
		return mem, func() { _ = mem.Close() }, nil
	}
	lc := cache.NewLayeredCache(mem, rc, cfg.Cache.Memory.TTL)
	return lc, func() { _ = lc.Close() }, nil
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideAnalogsHandler creates the read API handler.
func ProvideAnalogsHandler(
	l *applogger.Logger,
	finder *usecase.AnalogFinder,
	store repository.ObservationStore,
	c cache.Service,
	m repository.Metrics,
	cfg *config.Config,
) *api.AnalogsEchoHandler {
	opts := []api.HandlerOption{
		api.WithHandlerMetrics(m),
		api.WithLocation(cfg.Location()),
	}
	if c != nil {
		opts = append(opts, api.WithCache(c, cfg.Cache.TTL))
	}
	return api.NewAnalogsEchoHandler(l, finder, store, opts...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.AnalogsEchoHandler, limiter *ratelimit.Limiter) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(limiter))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideResultPublisher publishes aftermath results to Kafka.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ResultTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.TracingHook{L: l, Slow: time.Second})
	return consumer, nil
}

// ProvideBackfillHandler handles aftermath jobs. Nil when Kafka is disabled.
func ProvideBackfillHandler(
	cfg *config.Config,
	finder *usecase.AnalogFinder,
	pub repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AftermathBackfillHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewAftermathBackfillHandler(cfg.Kafka.RequestTopic, finder, pub, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	backfill *usecase.AftermathBackfillHandler,
	limiter *ratelimit.Limiter,
) *server.App {
	opts := []server.Option{server.WithLogger(l)}
	if consumer != nil && backfill != nil {
		opts = append(opts, server.WithConsumer(consumer, backfill))
	}
	if limiter != nil {
		opts = append(opts, server.WithLimiterSweep(limiter, time.Minute, 10*time.Minute))
	}
	return server.New(cfg, httpServer, opts...)
}
