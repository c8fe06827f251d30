package analyzer

import (
	"fmt"
	"time"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

const (
	DefaultShortPeriod = 10
	DefaultLongPeriod  = 20
	DefaultMaxWindow   = 50
)

// Analyzer turns observations into a TrendReport. It holds no state between runs.
type Analyzer struct {
	ShortPeriod int
	LongPeriod  int
	MaxWindow   int

	now func() time.Time
}

// New returns an Analyzer with the default 10/20 periods and a 50 point window.
func New() *Analyzer {
	return &Analyzer{
		ShortPeriod: DefaultShortPeriod,
		LongPeriod:  DefaultLongPeriod,
		MaxWindow:   DefaultMaxWindow,
		now:         time.Now,
	}
}

// NewWithPeriods returns an Analyzer with caller-chosen periods.
func NewWithPeriods(short, long, maxWindow int) (*Analyzer, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("periods %d/%d: %w", short, long, calculator.ErrInvalidPeriod)
	}
	if short >= long {
		return nil, fmt.Errorf("short period %d must be below long period %d", short, long)
	}
	if maxWindow < long {
		return nil, fmt.Errorf("max window %d must cover long period %d", maxWindow, long)
	}
	a := New()
	a.ShortPeriod, a.LongPeriod, a.MaxWindow = short, long, maxWindow
	return a, nil
}

// Normalize is Normalize bound to the analyzer's window.
func (a *Analyzer) Normalize(raw []model.RawObservation) model.Series {
	return Normalize(raw, a.MaxWindow)
}

// Analyze normalizes raw rows and classifies the result.
func (a *Analyzer) Analyze(symbol string, raw []model.RawObservation) *model.TrendReport {
	r := a.DetectTrend(a.Normalize(raw))
	r.Symbol = symbol
	r.GeneratedAt = a.clock()
	return r
}

// DetectTrend classifies the series. Fewer than ShortPeriod points yields
// InsufficientData with zeroed numbers. The result depends only on series.
func (a *Analyzer) DetectTrend(series model.Series) *model.TrendReport {
	short, long := a.periods()
	report := &model.TrendReport{
		ShortPeriod: short,
		LongPeriod:  long,
		Points:      len(series),
		Trend:       model.InsufficientData,
	}
	if len(series) < short {
		return report
	}

	// both periods are positive here, so ComputeSMA cannot fail
	report.SMAShort, _ = calculator.ComputeSMA(series, short)
	report.SMALong, _ = calculator.ComputeSMA(series, long)
	report.LongReady = calculator.SMAReady(series, long)
	last, _ := series.Last()
	report.LatestPrice = last.Price
	report.Trend = Classify(report.SMAShort, report.SMALong)
	return report
}

// Classify compares the two averages at full precision.
func Classify(short, long float64) model.Trend {
	switch {
	case short > long:
		return model.Uptrend
	case short < long:
		return model.Downtrend
	default:
		return model.Sideways
	}
}

// periods falls back to the defaults for an unset zero-value Analyzer.
func (a *Analyzer) periods() (short, long int) {
	short, long = a.ShortPeriod, a.LongPeriod
	if short <= 0 {
		short = DefaultShortPeriod
	}
	if long <= 0 {
		long = DefaultLongPeriod
	}
	return short, long
}

func (a *Analyzer) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}
