package model

import "time"

// Trend classifies the short SMA against the long SMA.
type Trend string

const (
	Uptrend          Trend = "Uptrend"
	Downtrend        Trend = "Downtrend"
	Sideways         Trend = "Sideways"
	InsufficientData Trend = "InsufficientData"
)

// ParseTrend maps a stored trend label back to a Trend.
func ParseTrend(s string) (Trend, bool) {
	switch t := Trend(s); t {
	case Uptrend, Downtrend, Sideways, InsufficientData:
		return t, true
	}
	return "", false
}

// TrendReport is the result of one analysis run over a Series.
type TrendReport struct {
	Symbol      string    `json:"symbol"`
	LatestPrice float64   `json:"latest_price"`
	SMAShort    float64   `json:"sma_short"`
	SMALong     float64   `json:"sma_long"`
	ShortPeriod int       `json:"short_period"`
	LongPeriod  int       `json:"long_period"`
	LongReady   bool      `json:"long_ready"` // false: SMALong is the zero sentinel
	Trend       Trend     `json:"trend"`
	Points      int       `json:"points"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Sufficient reports whether the report carries real averages.
func (r *TrendReport) Sufficient() bool {
	return r.Trend != InsufficientData
}
