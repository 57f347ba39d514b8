package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for loading a closing-price column from CSV.
type CSVOptions struct {
	Name        string // Label given to the loaded series
	DateColumn  string // Column name for dates (default: "Date")
	ValueColumn string // Column name for values (default: "Close")
	IDColumn    string // Column name for the symbol in long-format files (optional)
	IDFilter    string // Symbol to keep when IDColumn is set
	DateFormat  string // Date format (default: "2006-01-02")
	Delimiter   rune   // Field delimiter (default: ',')
	SkipMissing bool   // Drop rows whose value is empty or NA instead of failing
}

// DefaultCSVOptions returns default options for end-of-day price files.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "Date",
		ValueColumn: "Close",
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
		SkipMissing: true,
	}
}

// LoadCSV loads a series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a series from an io.Reader. The first row must be a header.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	valueIdx, dateIdx, idIdx := -1, -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case strings.EqualFold(h, opts.ValueColumn):
			valueIdx = i
		case opts.DateColumn != "" && strings.EqualFold(h, opts.DateColumn):
			dateIdx = i
		case opts.IDColumn != "" && strings.EqualFold(h, opts.IDColumn):
			idIdx = i
		}
	}
	if valueIdx == -1 {
		return nil, fmt.Errorf("value column %q not found in header", opts.ValueColumn)
	}
	if opts.IDFilter != "" && idIdx == -1 {
		return nil, fmt.Errorf("id column %q not found in header", opts.IDColumn)
	}

	formats := []string{
		opts.DateFormat,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
	}

	var values []float64
	var timestamps []time.Time
	row := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row++

		if opts.IDFilter != "" && idIdx < len(record) {
			id := strings.TrimSpace(strings.Trim(record[idIdx], "\""))
			if id != opts.IDFilter {
				continue
			}
		}

		if valueIdx >= len(record) {
			return nil, fmt.Errorf("row %d: missing value column", row)
		}
		valStr := strings.TrimSpace(strings.Trim(record[valueIdx], "\""))
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			if opts.SkipMissing {
				continue
			}
			return nil, fmt.Errorf("row %d: missing value", row)
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse value %q: %w", row, valStr, err)
		}
		values = append(values, val)

		if dateIdx >= 0 && dateIdx < len(record) {
			dateStr := strings.TrimSpace(strings.Trim(record[dateIdx], "\""))
			for _, layout := range formats {
				ts, perr := time.Parse(layout, dateStr)
				if perr == nil {
					timestamps = append(timestamps, ts)
					break
				}
			}
		}
	}

	if len(values) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	if len(timestamps) != len(values) {
		return New(opts.Name, values), nil
	}
	return NewWithTimestamps(opts.Name, timestamps, values)
}
