package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"TrendSentinel/internal/model"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLRecorder persists reports to SQLite or PostgreSQL through sqlx.
type SQLRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// reportRow is the trend_reports table layout.
type reportRow struct {
	ID          string  `db:"id"`
	Symbol      string  `db:"symbol"`
	GeneratedAt int64   `db:"generated_at"` // unix millis
	LatestPrice float64 `db:"latest_price"`
	SMAShort    float64 `db:"sma_short"`
	SMALong     float64 `db:"sma_long"`
	ShortPeriod int     `db:"short_period"`
	LongPeriod  int     `db:"long_period"`
	LongReady   bool    `db:"long_ready"`
	Trend       string  `db:"trend"`
	Points      int     `db:"points"`
}

// NewSQLRecorder opens (or creates) the database and runs migrations.
// driver is "sqlite" or "postgres".
func NewSQLRecorder(driver, dsn string) (*SQLRecorder, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
		// single writer; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	r := &SQLRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] %s recorder opened", driver)
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trend_reports (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			generated_at BIGINT NOT NULL,
			latest_price DOUBLE PRECISION,
			sma_short    DOUBLE PRECISION,
			sma_long     DOUBLE PRECISION,
			short_period INTEGER,
			long_period  INTEGER,
			long_ready   BOOLEAN,
			trend        TEXT,
			points       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_symbol_ts ON trend_reports(symbol, generated_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", strings.TrimSpace(s)[:40], err)
		}
	}
	return nil
}

func (r *SQLRecorder) RecordReport(ctx context.Context, rep *model.TrendReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := rep.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	row := reportRow{
		ID:          uuid.NewString(),
		Symbol:      model.NormalizeSymbol(rep.Symbol),
		GeneratedAt: at.UnixMilli(),
		LatestPrice: rep.LatestPrice,
		SMAShort:    rep.SMAShort,
		SMALong:     rep.SMALong,
		ShortPeriod: rep.ShortPeriod,
		LongPeriod:  rep.LongPeriod,
		LongReady:   rep.LongReady,
		Trend:       string(rep.Trend),
		Points:      rep.Points,
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO trend_reports
		(id, symbol, generated_at, latest_price, sma_short, sma_long,
		 short_period, long_period, long_ready, trend, points)
		VALUES (:id, :symbol, :generated_at, :latest_price, :sma_short, :sma_long,
		 :short_period, :long_period, :long_ready, :trend, :points)`, row)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *SQLRecorder) LatestReport(ctx context.Context, symbol string) (*model.TrendReport, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT id, symbol, generated_at, latest_price,
		sma_short, sma_long, short_period, long_period, long_ready, trend, points
		FROM trend_reports WHERE symbol = ? ORDER BY generated_at DESC LIMIT 1`), model.NormalizeSymbol(symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("select latest report: %w", err)
	}
	return row.toModel(), nil
}

// History returns up to limit reports for symbol, newest first.
func (r *SQLRecorder) History(ctx context.Context, symbol string, limit int) ([]*model.TrendReport, error) {
	var rows []reportRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT id, symbol, generated_at, latest_price,
		sma_short, sma_long, short_period, long_period, long_ready, trend, points
		FROM trend_reports WHERE symbol = ? ORDER BY generated_at DESC LIMIT ?`), model.NormalizeSymbol(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	out := make([]*model.TrendReport, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *SQLRecorder) Close() error {
	log.Println("[INFO] closing sql recorder")
	return r.db.Close()
}

func (row *reportRow) toModel() *model.TrendReport {
	trend, ok := model.ParseTrend(row.Trend)
	if !ok {
		trend = model.InsufficientData
	}
	return &model.TrendReport{
		Symbol:      row.Symbol,
		LatestPrice: row.LatestPrice,
		SMAShort:    row.SMAShort,
		SMALong:     row.SMALong,
		ShortPeriod: row.ShortPeriod,
		LongPeriod:  row.LongPeriod,
		LongReady:   row.LongReady,
		Trend:       trend,
		Points:      row.Points,
		GeneratedAt: time.UnixMilli(row.GeneratedAt),
	}
}
