//go:build wireinject
// +build wireinject

package di

import (
	"StockAnalog/pkg/config"
	"StockAnalog/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes store, cache and producer clients.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Storage and engine
		ProvideObservationStore,
		ProvideAnalogFinder,
		ProvideCache,

		// HTTP
		ProvideRateLimiter,
		ProvideAnalogsHandler,
		ProvideHTTPServer,

		// Aftermath backfill
		ProvideKafkaProducer,
		ProvideResultPublisher,
		ProvideKafkaConsumer,
		ProvideBackfillHandler,

		ProvideApp,
	)
	return nil, nil, nil
}
