package main

import (
	"context"
	"log"
	"time"

	"TrendSentinel/internal/analyzer"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/recorder"
)

func newAnalyzer(cfg *config.Config) *analyzer.Analyzer {
	a, err := analyzer.NewWithPeriods(cfg.Analysis.ShortPeriod, cfg.Analysis.LongPeriod, cfg.Analysis.MaxWindow)
	if err != nil {
		log.Fatalf("[FATAL] analyzer: %v", err)
	}
	return a
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	if cfg.DataSource.Kind == "csv" {
		return collector.NewCSVFetcher(cfg.DataSource.CSVPath)
	}
	return newAlphaVantage(cfg)
}

func newAlphaVantage(cfg *config.Config) *collector.AlphaVantageFetcher {
	ds := cfg.DataSource
	return collector.NewAlphaVantageFetcher(ds.BaseURL, ds.APIKey, ds.Function, ds.Interval, cfg.Proxy)
}

// newRecorder opens every configured backend. Backends that fail to open are
// logged and skipped; with none left a noop recorder is returned.
func newRecorder(cfg *config.Config, extra ...recorder.Recorder) recorder.Recorder {
	multi := recorder.MultiRecorder(extra)

	if cfg.Database.DSN != "" {
		sr, err := recorder.NewSQLRecorder(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			log.Printf("[WARN] init %s recorder failed, skipping: %v", cfg.Database.Driver, err)
		} else {
			multi = append(multi, sr)
		}
	}

	if cfg.Redis.Addr != "" {
		rr := recorder.NewRedisRecorder(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rr.Ping(ctx)
		cancel()
		if err != nil {
			log.Printf("[WARN] redis %s unreachable, skipping: %v", cfg.Redis.Addr, err)
			_ = rr.Close()
		} else {
			multi = append(multi, rr)
		}
	}

	if len(multi) == 0 {
		return recorder.NewNoopRecorder()
	}
	return multi
}
