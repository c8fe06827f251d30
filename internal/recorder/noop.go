package recorder

import (
	"context"

	"TrendSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when no backend is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReport(_ context.Context, _ *model.TrendReport) error { return nil }
func (n *NoopRecorder) Close() error                                               { return nil }
