package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
	"TrendSentinel/internal/report"
)

// Sender delivers a rendered alert.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler repeats fetch → analyze → record → notify for each symbol.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Notifier  Sender                   // optional
	Detector  *notifier.ChangeDetector // optional; when set only trend changes are sent
	Quotes    collector.QuoteFetcher   // optional; serves /quote
	Symbols   []string
	Out       io.Writer // optional; receives the rendered table per report
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Overlapping runs are skipped.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder, symbols []string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Collector: col,
		Recorder:  rec,
		Symbols:   symbols,
		Ctx:       ctx,
	}
}

// Spec turns a fixed interval into a cron descriptor unless an explicit
// cron expression is given.
func Spec(interval time.Duration, expr string) string {
	if expr != "" {
		return expr
	}
	return "@every " + interval.String()
}

// Register adds the polling job.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.pollTask); err != nil {
		return fmt.Errorf("register polling task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops scheduling and waits for a running iteration to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunOnce executes one iteration immediately.
func (s *Scheduler) RunOnce(ctx context.Context) []*model.TrendReport {
	return s.runIteration(ctx)
}

func (s *Scheduler) pollTask() {
	s.runIteration(s.Ctx)
}

// runIteration analyzes every symbol. Cancellation is checked before each
// symbol, so a report is either fully produced and recorded or not started.
func (s *Scheduler) runIteration(ctx context.Context) []*model.TrendReport {
	var reports []*model.TrendReport
	for _, symbol := range s.Symbols {
		if ctx.Err() != nil {
			log.Printf("[INFO] iteration cancelled before %s", symbol)
			return reports
		}
		rep, err := s.Collector.Collect(ctx, symbol)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return reports
			}
			log.Printf("[ERROR] collect %s: %v", symbol, err)
			continue
		}
		s.publish(rep)
		reports = append(reports, rep)
	}
	return reports
}

// publish runs detached from cancellation so a finished report is always
// written out in full.
func (s *Scheduler) publish(rep *model.TrendReport) {
	ctx := context.WithoutCancel(s.Ctx)
	if s.Out != nil {
		fmt.Fprintln(s.Out, report.RenderTable(rep))
	}
	if err := s.Recorder.RecordReport(ctx, rep); err != nil {
		log.Printf("[ERROR] record %s: %v", rep.Symbol, err)
	}
	row := report.Row(rep)
	log.Printf("[INFO] %s: %s (price=%s short=%s long=%s)", rep.Symbol, rep.Trend, row[0], row[1], row[2])

	if s.Notifier == nil {
		return
	}
	if s.Detector != nil && !s.Detector.Changed(rep) {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, notifier.FormatTrendAlert(rep), 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	symbol := ""
	if len(fields) > 1 {
		symbol = model.NormalizeSymbol(fields[1])
	} else if len(s.Symbols) > 0 {
		symbol = model.NormalizeSymbol(s.Symbols[0])
	}

	switch fields[0] {
	case "/trend":
		rep, err := s.Collector.Collect(ctx, symbol)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", symbol, err)
		}
		return notifier.FormatTrendAlert(rep)
	case "/last":
		store, ok := s.Recorder.(recorder.Store)
		if !ok {
			return "no report store configured"
		}
		rep, err := store.LatestReport(ctx, symbol)
		if errors.Is(err, recorder.ErrNoReport) {
			return fmt.Sprintf("no report for %s yet", symbol)
		}
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", symbol, err)
		}
		return notifier.FormatTrendAlert(rep)
	case "/history":
		h, ok := s.Recorder.(recorder.Historian)
		if !ok {
			return "no report history configured"
		}
		reps, err := h.History(ctx, symbol, historyLimit)
		if err != nil && !errors.Is(err, recorder.ErrNoReport) {
			return fmt.Sprintf("❌ %s: %v", symbol, err)
		}
		if len(reps) == 0 {
			return fmt.Sprintf("no report for %s yet", symbol)
		}
		return notifier.FormatHistory(symbol, reps)
	case "/quote":
		if s.Quotes == nil {
			return "no quote source configured"
		}
		q, err := s.Quotes.FetchQuote(ctx, symbol)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", symbol, err)
		}
		return notifier.FormatQuote(q)
	default:
		return helpText
	}
}

const historyLimit = 10

const helpText = "Commands:\n• /trend SYMBOL\n• /last SYMBOL\n• /history SYMBOL\n• /quote SYMBOL"
