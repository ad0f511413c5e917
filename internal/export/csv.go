// Package export renders the final call dataset and hands it to storage.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/avelior/calex/internal/types"
)

// columns is the fixed header of the export dataset.
var columns = []string{
	"ID",
	"Duration Seconds",
	"Call Outcome",
	"Activity Date",
	"Assigned To",
	"Weekday",
	"Hour",
	"Minute",
	"Time Slot",
	"Gap Between Calls (Seconds)",
}

// utf8BOM keeps spreadsheet tools from misreading accented owner names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const timestampLayout = "2006-01-02 15:04:05-07:00"

// WriteCSV writes rows to path in their given order, BOM-prefixed.
func WriteCSV(path string, rows []types.CallRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := w.Write(renderRow(row)); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func renderRow(row types.CallRow) []string {
	gap := ""
	if row.GapSeconds != nil {
		gap = strconv.FormatFloat(*row.GapSeconds, 'f', -1, 64)
	}

	return []string{
		row.ID,
		strconv.Itoa(row.DurationSeconds),
		row.Disposition,
		row.Timestamp.Format(timestampLayout),
		row.Owner,
		row.Weekday,
		strconv.Itoa(row.Hour),
		row.Minute,
		row.TimeSlot,
		gap,
	}
}
