package notifier

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"TrendSentinel/internal/model"
	"TrendSentinel/internal/report"
)

var trendIcons = map[model.Trend]string{
	model.Uptrend:          "📈",
	model.Downtrend:        "📉",
	model.Sideways:         "➡️",
	model.InsufficientData: "❔",
}

// FormatTrendAlert formats a report as a Telegram HTML message.
func FormatTrendAlert(r *model.TrendReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n\n", trendIcons[r.Trend], html.EscapeString(r.Symbol), r.Trend))

	header := report.Header(r)
	row := report.Row(r)
	for i := 0; i < len(header)-1; i++ {
		b.WriteString(fmt.Sprintf("%s: %s\n", header[i], row[i]))
	}
	b.WriteString(fmt.Sprintf("Points: %d\n", r.Points))
	if !r.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("At: %s\n", r.GeneratedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatHistory lists past reports, newest first, one line each.
func FormatHistory(symbol string, reps []*model.TrendReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> history\n\n", html.EscapeString(symbol)))
	for _, r := range reps {
		row := report.Row(r)
		b.WriteString(fmt.Sprintf("%s %s %s @ %s\n", r.GeneratedAt.Format("2006-01-02 15:04"),
			trendIcons[r.Trend], r.Trend, row[0]))
	}
	return b.String()
}

// FormatQuote formats a single latest price.
func FormatQuote(q *model.Quote) string {
	return fmt.Sprintf("💵 <b>%s</b>: %s", html.EscapeString(q.Symbol), report.Round2(q.Price))
}

// ChangeDetector remembers the last trend per symbol.
type ChangeDetector struct {
	mu   sync.Mutex
	last map[string]model.Trend
}

func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{last: make(map[string]model.Trend)}
}

// Changed records r and reports whether its trend differs from the previous
// one for the same symbol. The first report for a symbol counts as a change.
func (d *ChangeDetector) Changed(r *model.TrendReport) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, seen := d.last[r.Symbol]
	d.last[r.Symbol] = r.Trend
	return !seen || prev != r.Trend
}
