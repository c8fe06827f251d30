package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func seriesOf(prices ...float64) model.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(model.Series, len(prices))
	for i, p := range prices {
		s[i] = model.Observation{Time: start.AddDate(0, 0, i), Price: p}
	}
	return s
}

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
		err    error
	}{
		{"exact window", []float64{1, 2, 3, 4}, 4, 2.5, nil},
		{"tail only", []float64{100, 1, 2, 3}, 3, 2, nil},
		{"single", []float64{7}, 1, 7, nil},
		{"too short", []float64{1, 2}, 3, 0, ErrInsufficientData},
		{"zero period", []float64{1, 2}, 0, 0, ErrInvalidPeriod},
		{"negative period", []float64{1, 2}, -1, 0, ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSMA(tt.prices, tt.period)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComputeSMA_Sentinel(t *testing.T) {
	s := seriesOf(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	short, err := ComputeSMA(s, 10)
	require.NoError(t, err)
	assert.Equal(t, 5.5, short)

	long, err := ComputeSMA(s, 20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, long)
	assert.False(t, SMAReady(s, 20))
	assert.True(t, SMAReady(s, 10))
}

func TestComputeSMA_InvalidPeriod(t *testing.T) {
	_, err := ComputeSMA(seriesOf(1, 2, 3), 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.False(t, SMAReady(seriesOf(1, 2, 3), 0))
}

func TestComputeSMA_MeanOfTail(t *testing.T) {
	prices := []float64{3, 9, 4, 1, 8, 2, 6}
	s := seriesOf(prices...)
	for period := 1; period <= len(prices); period++ {
		sum := 0.0
		for _, p := range prices[len(prices)-period:] {
			sum += p
		}
		got, err := ComputeSMA(s, period)
		require.NoError(t, err)
		assert.InDelta(t, sum/float64(period), got, 1e-9, "period %d", period)
	}
}

func TestCalculateSMA_HugePricesStayFinite(t *testing.T) {
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = math.MaxFloat64
	}
	got, err := CalculateSMA(flat, 20)
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, got)

	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 5e306 * float64(i+1)
	}
	got, err = CalculateSMA(rising, 20)
	require.NoError(t, err)
	assert.False(t, math.IsInf(got, 0))
	assert.InEpsilon(t, 5e306*10.5, got, 1e-12)
}
