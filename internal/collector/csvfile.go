package collector

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"TrendSentinel/internal/model"
)

// CSVFetcher reads `timestamp,closePrice` rows from a local file with a header row.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a fetcher for the given file.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

// FetchObservations ignores symbol; the file holds a single instrument.
func (f *CSVFetcher) FetchObservations(_ context.Context, _ string) ([]model.RawObservation, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses a header row followed by timestamp,price rows. Rows that do
// not have two fields are returned with an empty price so normalization drops
// them. Each line is parsed on its own, so a broken quote only costs its row.
func ReadCSV(r io.Reader) ([]model.RawObservation, error) {
	sc := bufio.NewScanner(r)
	header := true
	var rows []model.RawObservation
	for sc.Scan() {
		line := sc.Text()
		if header {
			header = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			rows = append(rows, model.RawObservation{Timestamp: strings.TrimSpace(line)})
			continue
		}
		row := model.RawObservation{Timestamp: strings.TrimSpace(rec[0])}
		if len(rec) == 2 {
			row.Price = strings.TrimSpace(rec[1])
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func parseLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.Read()
}
