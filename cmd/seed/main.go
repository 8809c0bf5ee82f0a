// Command seed loads a JSON fixture of price observations into the configured store.
//
//	seed -config config/config.yaml -file testdata/observations.json
//
// Every row is validated before anything is written; a single bad row aborts the load.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"StockAnalog/internal/di"
	"StockAnalog/internal/repository"
	"StockAnalog/pkg/config"
	applogger "StockAnalog/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	file := flag.String("file", "", "fixture file (JSON array), - for stdin")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	var r io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("open fixture: %v", err)
		}
		defer f.Close()
		r = f
	}

	obs, err := repository.LoadObservations(r)
	if err != nil {
		log.Fatalf("load fixture: %v", err)
	}

	store, cleanup, err := di.ProvideObservationStore(cfg, l)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := store.InsertBatch(ctx, obs); err != nil {
		l.Error("seed failed", applogger.Error(err))
		cleanup()
		os.Exit(1)
	}
	l.Info("seed complete",
		applogger.Int("rows", len(obs)),
		applogger.String("backend", cfg.Store.Backend),
		applogger.String("table", cfg.Store.Table),
	)
}
