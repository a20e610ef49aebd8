package feed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReadCSV parses CSV content into a Table. The first record is the header
// row. Ragged rows are accepted; short rows read as blank cells.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return NewTable(nil, nil), nil
	}
	return NewTable(records[0], records[1:]), nil
}

// ReadCSVBytes parses in-memory CSV content (uploads).
func ReadCSVBytes(data []byte) (*Table, error) {
	return ReadCSV(bytes.NewReader(data))
}

// ReadCSVFile reads a CSV file from disk.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadWorkbook reads the first sheet of an xlsx workbook into a Table.
// The applications feed arrives as an Excel export, so this is the primary
// ingest path for that source.
func ReadWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewTable(nil, nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NewTable(nil, nil), nil
	}
	return NewTable(rows[0], rows[1:]), nil
}

// ReadWorkbookFile reads an xlsx workbook from disk.
func ReadWorkbookFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewTable(nil, nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NewTable(nil, nil), nil
	}
	return NewTable(rows[0], rows[1:]), nil
}

// Fetcher retrieves the applications feed from its CSV export URL.
type Fetcher struct {
	client  *http.Client
	logger  *slog.Logger
	timeout time.Duration
}

// NewFetcher creates a feed fetcher. A nil logger falls back to the
// default slog logger.
func NewFetcher(logger *slog.Logger, timeout time.Duration) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		timeout: timeout,
	}
}

// FetchCSV downloads and parses a CSV feed. Errors are returned to the
// caller (the service layer converts them into an empty-table load with a
// logged warning; the engine itself never sees a fetch failure).
func (f *Fetcher) FetchCSV(ctx context.Context, url string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	table, err := ReadCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	f.logger.InfoContext(ctx, "fetched applications feed",
		slog.String("url", url),
		slog.Int("rows", table.Len()))
	return table, nil
}
