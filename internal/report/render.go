package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"TrendSentinel/internal/model"
)

// NotAvailable is rendered in place of numbers that are not real averages.
const NotAvailable = "N/A"

// Header returns the CSV header row for the report's periods.
func Header(r *model.TrendReport) []string {
	return []string{
		"Latest Price",
		fmt.Sprintf("%d-SMA", periodOr(r.ShortPeriod, 10)),
		fmt.Sprintf("%d-SMA", periodOr(r.LongPeriod, 20)),
		"Trend",
	}
}

// Row returns the data row with numbers rounded to two decimals.
func Row(r *model.TrendReport) []string {
	if !r.Sufficient() {
		return []string{NotAvailable, NotAvailable, NotAvailable, string(r.Trend)}
	}
	long := NotAvailable
	if r.LongReady {
		long = Round2(r.SMALong)
	}
	return []string{Round2(r.LatestPrice), Round2(r.SMAShort), long, string(r.Trend)}
}

// RenderCSV produces the two-line delimited report.
func RenderCSV(r *model.TrendReport) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{Header(r), Row(r)}); err != nil {
		return "", fmt.Errorf("write csv report: %w", err)
	}
	return buf.String(), nil
}

// RenderTable produces an aligned human readable table.
func RenderTable(r *model.TrendReport) string {
	var b strings.Builder
	if r.Symbol != "" {
		fmt.Fprintf(&b, "Symbol: %s (%d points)\n", r.Symbol, r.Points)
	}
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(Header(r), "\t"))
	fmt.Fprintln(tw, strings.Join(Row(r), "\t"))
	tw.Flush()
	return b.String()
}

// Round2 formats v with exactly two decimals, rounding half away from zero.
// Non-finite values render as NotAvailable.
func Round2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func periodOr(p, def int) int {
	if p > 0 {
		return p
	}
	return def
}
