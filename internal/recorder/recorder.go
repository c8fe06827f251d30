package recorder

import (
	"context"
	"errors"

	"TrendSentinel/internal/model"
)

// ErrNoReport is returned when no report has been stored for a symbol.
var ErrNoReport = errors.New("no report recorded")

// Recorder persists trend reports.
type Recorder interface {
	RecordReport(ctx context.Context, r *model.TrendReport) error
	Close() error
}

// Store is a Recorder that can also read back the latest report per symbol.
type Store interface {
	Recorder
	LatestReport(ctx context.Context, symbol string) (*model.TrendReport, error)
}

// Historian lists past reports for a symbol, newest first.
type Historian interface {
	History(ctx context.Context, symbol string, limit int) ([]*model.TrendReport, error)
}

// MultiRecorder fans a report out to several recorders.
type MultiRecorder []Recorder

// RecordReport writes to every recorder and joins their errors.
func (m MultiRecorder) RecordReport(ctx context.Context, r *model.TrendReport) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordReport(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LatestReport asks each Store in order and returns the first hit.
func (m MultiRecorder) LatestReport(ctx context.Context, symbol string) (*model.TrendReport, error) {
	for _, rec := range m {
		s, ok := rec.(Store)
		if !ok {
			continue
		}
		r, err := s.LatestReport(ctx, symbol)
		if errors.Is(err, ErrNoReport) {
			continue
		}
		return r, err
	}
	return nil, ErrNoReport
}

// History returns the history of the first recorder that keeps one.
func (m MultiRecorder) History(ctx context.Context, symbol string, limit int) ([]*model.TrendReport, error) {
	for _, rec := range m {
		if h, ok := rec.(Historian); ok {
			return h.History(ctx, symbol, limit)
		}
	}
	return nil, ErrNoReport
}

func (m MultiRecorder) Close() error {
	var errs []error
	for _, rec := range m {
		if err := rec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
