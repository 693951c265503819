// Package exporter turns the rows currently shown in a list into a CSV
// download. The export reflects the active filters: only the rows the list
// holds are written, never the whole table.
package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Export describes one CSV download.
type Export struct {
	Filename string
	Data     []byte
}

// CSV writes the header and rows as CSV and names the file after the
// entity and the given day.
// PRE: every row has len(header) cells
// POST: Filename is "<entity>_YYYY-MM-DD.csv"
func CSV(entity string, day time.Time, header []string, rows [][]string) (Export, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return Export{}, fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return Export{}, fmt.Errorf("row %d has %d cells, header has %d", i, len(row), len(header))
		}
		if err := w.Write(row); err != nil {
			return Export{}, fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Export{}, fmt.Errorf("failed to flush csv: %w", err)
	}

	return Export{
		Filename: fmt.Sprintf("%s_%s.csv", entity, day.Format("2006-01-02")),
		Data:     buf.Bytes(),
	}, nil
}

// Rows projects a slice of entities to CSV cells via fn. Keeps handler code
// at one line per export.
func Rows[T any](items []T, fn func(T) []string) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, fn(item))
	}
	return rows
}
