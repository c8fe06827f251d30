package model

import (
	"strings"
	"time"
)

// RawObservation is one unparsed (timestamp, price) row as an ingestion source produced it.
type RawObservation struct {
	Timestamp string
	Price     string
}

// Observation is a single timestamped price sample.
type Observation struct {
	Time  time.Time
	Price float64
}

// Series is a normalized sequence of observations, ascending by time.
type Series []Observation

// Prices returns the price column of the series.
func (s Series) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, o := range s {
		prices[i] = o.Price
	}
	return prices
}

// Last returns the most recent observation. ok is false for an empty series.
func (s Series) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Quote is a single latest price for a symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// NormalizeSymbol is the canonical form used for report keys and lookups.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
