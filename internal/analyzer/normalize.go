package analyzer

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

// TimestampLayouts are the accepted timestamp formats, tried in order.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a source timestamp in UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePrice parses a price string. Non-finite and negative values are rejected.
func ParsePrice(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !validPrice(p) {
		return 0, false
	}
	return p, true
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

// Normalize parses raw rows, drops malformed ones, sorts ascending by time
// and keeps the last maxWindow observations. A non-positive maxWindow means
// DefaultMaxWindow.
func Normalize(raw []model.RawObservation, maxWindow int) model.Series {
	obs := make([]model.Observation, 0, len(raw))
	for _, r := range raw {
		t, ok := ParseTimestamp(r.Timestamp)
		if !ok {
			continue
		}
		p, ok := ParsePrice(r.Price)
		if !ok {
			continue
		}
		obs = append(obs, model.Observation{Time: t, Price: p})
	}
	return NormalizeObservations(obs, maxWindow)
}

// NormalizeObservations applies the same filtering, ordering and capping to
// already-typed observations. The input slice is not modified.
func NormalizeObservations(obs []model.Observation, maxWindow int) model.Series {
	series := make(model.Series, 0, len(obs))
	for _, o := range obs {
		if o.Time.IsZero() || !validPrice(o.Price) {
			continue
		}
		series = append(series, o)
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })

	if maxWindow <= 0 {
		maxWindow = DefaultMaxWindow
	}
	if len(series) > maxWindow {
		series = append(model.Series(nil), series[len(series)-maxWindow:]...)
	}
	return series
}
