package calculator

import (
	"errors"
	"math"

	"TrendSentinel/internal/model"
)

var (
	// ErrInvalidPeriod is returned for a non-positive averaging period.
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrInsufficientData is returned when fewer prices than the period are available.
	ErrInsufficientData = errors.New("not enough data for SMA calculation")
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	tail := prices[len(prices)-period:]
	sum := 0.0
	for _, p := range tail {
		sum += p
	}
	if !math.IsInf(sum, 0) {
		return sum / float64(period), nil
	}
	return scaledMean(tail), nil
}

// scaledMean averages values whose plain sum overflows by dividing through
// the largest magnitude first. Equal values yield exactly that value.
func scaledMean(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.IsInf(peak, 0) {
		return peak
	}
	sum := 0.0
	for _, v := range values {
		sum += v / peak
	}
	return peak * (sum / float64(len(values)))
}

// ComputeSMA returns the SMA over the tail of the series.
// A series shorter than period yields 0 with a nil error; callers that need to
// tell that apart from a real zero average should use SMAReady.
func ComputeSMA(series model.Series, period int) (float64, error) {
	v, err := CalculateSMA(series.Prices(), period)
	if errors.Is(err, ErrInsufficientData) {
		return 0, nil
	}
	return v, err
}

// SMAReady reports whether the series is long enough for a period-SMA.
func SMAReady(series model.Series, period int) bool {
	return period > 0 && len(series) >= period
}
