package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/analyzer"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/notifier"
	"TrendSentinel/internal/recorder"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type countingFetcher struct {
	calls  int32
	rows   []model.RawObservation
	err    error
	onCall func()
}

func (f *countingFetcher) Name() string { return "counting" }

func (f *countingFetcher) FetchObservations(_ context.Context, _ string) ([]model.RawObservation, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.onCall != nil {
		f.onCall()
	}
	return f.rows, f.err
}

type memStore struct {
	mu      sync.Mutex
	reports []*model.TrendReport
}

func (m *memStore) RecordReport(_ context.Context, r *model.TrendReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memStore) LatestReport(_ context.Context, symbol string) (*model.TrendReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].Symbol == symbol {
			return m.reports[i], nil
		}
	}
	return nil, recorder.ErrNoReport
}

func (m *memStore) Close() error { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func rising() []model.RawObservation {
	return collector.MockRows(start, 20, func(i int) float64 { return float64(i + 1) })
}

func newTestScheduler(ctx context.Context, f collector.Fetcher, store recorder.Recorder, symbols ...string) *Scheduler {
	return NewScheduler(ctx, collector.NewCollector(f, analyzer.New()), store, symbols)
}

func TestRunOnce_RecordsAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	sender := &fakeSender{}
	var out bytes.Buffer

	s := newTestScheduler(ctx, &countingFetcher{rows: rising()}, store, "IBM", "MSFT")
	s.Notifier = sender
	s.Out = &out

	reports := s.RunOnce(ctx)
	require.Len(t, reports, 2)
	assert.Equal(t, model.Uptrend, reports[0].Trend)
	assert.Equal(t, 2, store.count())
	assert.Len(t, sender.sent, 2)
	assert.Contains(t, out.String(), "Symbol: IBM")
	assert.Contains(t, out.String(), "Uptrend")
}

func TestRunOnce_OnlyChangesNotified(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	s := newTestScheduler(ctx, &countingFetcher{rows: rising()}, &memStore{}, "IBM")
	s.Notifier = sender
	s.Detector = notifier.NewChangeDetector()

	s.RunOnce(ctx)
	s.RunOnce(ctx)
	assert.Len(t, sender.sent, 1)
}

func TestRunOnce_FetchErrorSkipsSymbol(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestScheduler(ctx, &countingFetcher{err: errors.New("down")}, store, "IBM")

	assert.Empty(t, s.RunOnce(ctx))
	assert.Zero(t, store.count())
}

func TestRunOnce_CancelledBetweenSymbols(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &memStore{}
	f := &countingFetcher{rows: rising()}
	// cancel while the first symbol is being fetched; its report must still complete
	f.onCall = cancel

	s := newTestScheduler(ctx, f, store, "IBM", "MSFT", "AAPL")
	reports := s.RunOnce(ctx)

	require.Len(t, reports, 1)
	assert.Equal(t, "IBM", reports[0].Symbol)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

func TestRunOnce_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &countingFetcher{rows: rising()}
	s := newTestScheduler(ctx, f, &memStore{}, "IBM")

	assert.Empty(t, s.RunOnce(ctx))
	assert.Zero(t, atomic.LoadInt32(&f.calls))
}

func TestStartStop_PollsOnInterval(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestScheduler(ctx, &countingFetcher{rows: rising()}, store, "IBM")
	require.NoError(t, s.Register(Spec(time.Second, "")))

	s.Start()
	require.Eventually(t, func() bool { return store.count() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()

	n := store.count()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, n, store.count(), "no iterations after Stop")
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := newTestScheduler(context.Background(), &countingFetcher{}, nil, "IBM")
	assert.Error(t, s.Register("not a cron spec"))
}

func TestSpec(t *testing.T) {
	assert.Equal(t, "@every 1m0s", Spec(time.Minute, ""))
	assert.Equal(t, "0 */5 * * * *", Spec(time.Minute, "0 */5 * * * *"))
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	s := newTestScheduler(ctx, &countingFetcher{rows: rising()}, store, "IBM")

	assert.Contains(t, s.HandleCommand(ctx, "/last ibm"), "no report for IBM")
	assert.Contains(t, s.HandleCommand(ctx, "/trend ibm"), "<b>IBM</b> | Uptrend")

	s.RunOnce(ctx)
	assert.Contains(t, s.HandleCommand(ctx, "/last"), "<b>IBM</b>")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/trend")

	s.Recorder = recorder.NewNoopRecorder()
	assert.Equal(t, "no report store configured", s.HandleCommand(ctx, "/last IBM"))
	assert.Equal(t, "no report history configured", s.HandleCommand(ctx, "/history IBM"))
	assert.Equal(t, "no quote source configured", s.HandleCommand(ctx, "/quote IBM"))
}

type fakeQuotes struct{ asked string }

func (f *fakeQuotes) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	f.asked = symbol
	return &model.Quote{Symbol: symbol, Price: 179.234}, nil
}

func TestHandleCommand_Quote(t *testing.T) {
	ctx := context.Background()
	quotes := &fakeQuotes{}
	s := newTestScheduler(ctx, &countingFetcher{}, &memStore{}, "IBM")
	s.Quotes = quotes

	assert.Equal(t, "💵 <b>MSFT</b>: 179.23", s.HandleCommand(ctx, "/quote msft"))
	assert.Equal(t, "MSFT", quotes.asked)
}

func TestHandleCommand_HistoryFromSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := recorder.NewSQLRecorder("sqlite", filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer db.Close()

	s := newTestScheduler(ctx, &countingFetcher{rows: rising()}, recorder.MultiRecorder{db}, "ibm")
	assert.Equal(t, "no report for IBM yet", s.HandleCommand(ctx, "/history"))

	s.RunOnce(ctx)
	s.RunOnce(ctx)
	msg := s.HandleCommand(ctx, "/history Ibm")
	assert.Contains(t, msg, "<b>IBM</b> history")
	assert.Equal(t, 2, strings.Count(msg, "Uptrend @ 20.00"))
	assert.Contains(t, s.HandleCommand(ctx, "/last ibm"), "<b>IBM</b> | Uptrend")
}

func TestPublish_LogsPlaceholderLongAsNotAvailable(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	ctx := context.Background()
	ten := collector.MockRows(start, 10, func(i int) float64 { return float64(i + 1) })
	s := newTestScheduler(ctx, &countingFetcher{rows: ten}, &memStore{}, "IBM")
	s.RunOnce(ctx)

	assert.Contains(t, logs.String(), "IBM: Uptrend (price=10.00 short=5.50 long=N/A)")
}
