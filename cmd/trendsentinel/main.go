package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/report"
	"TrendSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to YAML config")
	mode := flag.String("mode", "report", "report | menu | watch")
	csvPath := flag.String("csv", "", "analyze this CSV file instead of the configured source")
	symbol := flag.String("symbol", "", "analyze only this symbol")
	out := flag.String("out", "", "report CSV output path")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *csvPath != "" {
		cfg.DataSource.Kind = "csv"
		cfg.DataSource.CSVPath = *csvPath
	}
	if *symbol != "" {
		cfg.DataSource.Symbols = []string{*symbol}
	}
	if *out != "" {
		cfg.Output.ReportPath = *out
	}

	switch *mode {
	case "report":
		mustValidate(cfg)
		runReport(cfg)
	case "menu":
		if err := cfg.Validate(); err != nil {
			log.Printf("[WARN] config incomplete, some menu entries may fail: %v", err)
		}
		runMenu(cfg, os.Stdin, os.Stdout)
	case "watch":
		mustValidate(cfg)
		runWatch(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		flag.Usage()
		os.Exit(2)
	}
}

func mustValidate(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
}

// runReport analyzes each symbol once, writes the CSV report and prints the table.
func runReport(cfg *config.Config) {
	csvRec := recorder.NewCSVRecorder(cfg.Output.ReportPath)
	rec := newRecorder(cfg, csvRec)

	col := collector.NewCollector(newFetcher(cfg), newAnalyzer(cfg))
	ctx := context.Background()
	failed := false
	for _, sym := range cfg.DataSource.Symbols {
		rep, err := col.Collect(ctx, sym)
		if err != nil {
			log.Printf("[ERROR] %v", err)
			failed = true
			continue
		}
		fmt.Println(report.RenderTable(rep))
		if err := rec.RecordReport(ctx, rep); err != nil {
			log.Printf("[ERROR] record %s: %v", sym, err)
			failed = true
		}
	}
	if len(cfg.DataSource.Symbols) > 1 && !csvRec.PerSymbol() {
		log.Printf("[WARN] %d symbols share %s; it holds the last one (use %s in the path)",
			len(cfg.DataSource.Symbols), cfg.Output.ReportPath, recorder.SymbolPlaceholder)
	}
	log.Printf("[INFO] report written to %s", cfg.Output.ReportPath)
	if err := rec.Close(); err != nil {
		log.Printf("[WARN] close recorders: %v", err)
	}
	if failed {
		os.Exit(1)
	}
}

// runWatch polls until SIGINT/SIGTERM. A running iteration finishes before exit.
func runWatch(cfg *config.Config) {
	log.Println("[INFO] TrendSentinel watch starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := newRecorder(cfg, recorder.NewCSVRecorder(cfg.Output.ReportPath))
	defer rec.Close()

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, newAnalyzer(cfg))

	sched := scheduler.NewScheduler(ctx, col, rec, cfg.DataSource.Symbols)
	sched.Out = os.Stdout
	if cfg.DataSource.APIKey != "" {
		sched.Quotes = newAlphaVantage(cfg)
	}

	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched.Notifier = tn
		if cfg.Telegram.OnChange {
			sched.Detector = notifier.NewChangeDetector()
		}
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	spec := scheduler.Spec(cfg.Schedule.Interval, cfg.Schedule.Cron)
	if err := sched.Register(spec); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	sched.RunOnce(ctx)
	sched.Start()
	log.Printf("[INFO] polling %v every %s. Press Ctrl+C to stop.", cfg.DataSource.Symbols, spec)

	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	log.Println("[INFO] TrendSentinel stopped")
}
