package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"TrendSentinel/internal/analyzer"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/report"
)

const menuText = `
1) Analyze CSV file
2) Fetch symbol from API
3) Show last stored report
4) Save last result to CSV
5) Latest quote
0) Exit
> `

// menu is the interactive console front end.
type menu struct {
	in       *bufio.Scanner
	out      io.Writer
	analyzer *analyzer.Analyzer
	api      collector.Fetcher
	quotes   collector.QuoteFetcher
	store    recorder.Recorder
	csv      *recorder.CSVRecorder
	last     *model.TrendReport
}

func runMenu(cfg *config.Config, in io.Reader, out io.Writer) {
	rec := newRecorder(cfg)
	defer rec.Close()
	api := newAlphaVantage(cfg)
	m := &menu{
		in:       bufio.NewScanner(in),
		out:      out,
		analyzer: newAnalyzer(cfg),
		api:      api,
		quotes:   api,
		store:    rec,
		csv:      recorder.NewCSVRecorder(cfg.Output.ReportPath),
	}
	m.run(context.Background())
}

func (m *menu) run(ctx context.Context) {
	for {
		fmt.Fprint(m.out, menuText)
		choice, ok := m.readLine()
		if !ok {
			return
		}
		switch choice {
		case "1":
			path := m.prompt("CSV path: ")
			m.analyze(ctx, collector.NewCSVFetcher(path), strings.TrimSuffix(baseName(path), ".csv"))
		case "2":
			m.analyze(ctx, m.api, model.NormalizeSymbol(m.prompt("Symbol: ")))
		case "3":
			m.showLast(ctx, model.NormalizeSymbol(m.prompt("Symbol: ")))
		case "4":
			m.save(ctx)
		case "5":
			m.quote(ctx, model.NormalizeSymbol(m.prompt("Symbol: ")))
		case "0", "q", "quit", "exit":
			fmt.Fprintln(m.out, "Bye.")
			return
		case "":
		default:
			fmt.Fprintf(m.out, "Unknown option %q\n", choice)
		}
	}
}

func (m *menu) analyze(ctx context.Context, f collector.Fetcher, symbol string) {
	if symbol == "" {
		fmt.Fprintln(m.out, "Nothing to analyze.")
		return
	}
	rep, err := collector.NewCollector(f, m.analyzer).Collect(ctx, symbol)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	m.last = rep
	fmt.Fprintln(m.out, report.RenderTable(rep))
	if err := m.store.RecordReport(ctx, rep); err != nil {
		fmt.Fprintf(m.out, "Warning: could not store report: %v\n", err)
	}
}

func (m *menu) showLast(ctx context.Context, symbol string) {
	store, ok := m.store.(recorder.Store)
	if !ok {
		fmt.Fprintln(m.out, "No report store configured.")
		return
	}
	rep, err := store.LatestReport(ctx, symbol)
	if errors.Is(err, recorder.ErrNoReport) {
		fmt.Fprintf(m.out, "No report for %s yet.\n", symbol)
		return
	}
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(m.out, report.RenderTable(rep))
}

func (m *menu) save(ctx context.Context) {
	if m.last == nil {
		fmt.Fprintln(m.out, "Run an analysis first.")
		return
	}
	if err := m.csv.RecordReport(ctx, m.last); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Saved to %s\n", m.csv.PathFor(m.last.Symbol))
}

func (m *menu) quote(ctx context.Context, symbol string) {
	if symbol == "" {
		fmt.Fprintln(m.out, "Nothing to look up.")
		return
	}
	q, err := m.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "%s: %s\n", q.Symbol, report.Round2(q.Price))
}

func (m *menu) prompt(label string) string {
	fmt.Fprint(m.out, label)
	s, _ := m.readLine()
	return s
}

func (m *menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
