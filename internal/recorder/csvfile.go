package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"TrendSentinel/internal/model"
	"TrendSentinel/internal/report"
)

// SymbolPlaceholder in a CSVRecorder path is replaced by the report symbol.
const SymbolPlaceholder = "{symbol}"

// CSVRecorder writes the two-line report file, replacing it on every run.
type CSVRecorder struct {
	Path string
	mu   sync.Mutex
}

func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{Path: path}
}

func (c *CSVRecorder) RecordReport(_ context.Context, r *model.TrendReport) error {
	text, err := report.RenderCSV(r)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.PathFor(r.Symbol)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	// write then rename so readers never see a half-written file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

// PathFor returns the file a report for symbol is written to.
func (c *CSVRecorder) PathFor(symbol string) string {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		symbol = "report"
	}
	return strings.ReplaceAll(c.Path, SymbolPlaceholder, symbol)
}

// PerSymbol reports whether each symbol gets its own file.
func (c *CSVRecorder) PerSymbol() bool {
	return strings.Contains(c.Path, SymbolPlaceholder)
}

func (c *CSVRecorder) Close() error { return nil }
