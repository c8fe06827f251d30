package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"TrendSentinel/internal/analyzer"
	"TrendSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Rows  []model.RawObservation
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchObservations(_ context.Context, _ string) ([]model.RawObservation, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

// MockRows builds count daily rows starting at start with prices from price(i).
func MockRows(start time.Time, count int, price func(i int) float64) []model.RawObservation {
	rows := make([]model.RawObservation, count)
	for i := 0; i < count; i++ {
		rows[i] = model.RawObservation{
			Timestamp: start.AddDate(0, 0, i).Format("2006-01-02 15:04:05"),
			Price:     fmt.Sprintf("%.4f", price(i)),
		}
	}
	return rows
}

// Collector orchestrates fetching and trend analysis.
type Collector struct {
	Fetcher  Fetcher
	Analyzer *analyzer.Analyzer
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, a *analyzer.Analyzer) *Collector {
	if a == nil {
		a = analyzer.New()
	}
	return &Collector{Fetcher: fetcher, Analyzer: a}
}

// Collect fetches rows for symbol and returns the trend report. The symbol is
// upper-cased first so every recorder stores it under the same key.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.TrendReport, error) {
	symbol = model.NormalizeSymbol(symbol)
	rows, err := c.Fetcher.FetchObservations(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	report := c.Analyzer.Analyze(symbol, rows)
	if !report.Sufficient() {
		log.Printf("[WARN] %s: only %d valid observations, need %d", symbol, report.Points, c.Analyzer.ShortPeriod)
	}
	return report, nil
}
