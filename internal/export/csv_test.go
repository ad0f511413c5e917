package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avelior/calex/internal/types"
	"github.com/avelior/calex/internal/window"
	"github.com/rs/zerolog"
)

func sampleRows() []types.CallRow {
	gap := 2700.0
	return []types.CallRow{
		{
			ID:              "call-2",
			DurationSeconds: 125,
			Disposition:     "Connected",
			Timestamp:       time.Date(2024, 5, 23, 10, 50, 0, 0, window.ExportZone),
			Owner:           "Claire Martin",
			Weekday:         "Thursday",
			Hour:            10,
			Minute:          "10:50",
			TimeSlot:        "10h30-11h30",
		},
		{
			ID:              "call-1",
			DurationSeconds: 0,
			Disposition:     "No answer",
			Timestamp:       time.Date(2024, 5, 23, 10, 5, 0, 0, window.ExportZone),
			Owner:           "Unknown",
			Weekday:         "Thursday",
			Hour:            10,
			Minute:          "10:05",
			TimeSlot:        "09h30-10h30",
			GapSeconds:      &gap,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := WriteCSV(path, sampleRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("expected UTF-8 BOM prefix")
	}

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "ID" || records[0][9] != "Gap Between Calls (Seconds)" {
		t.Errorf("unexpected header %v", records[0])
	}

	// Newest row first, empty gap cell.
	if records[1][0] != "call-2" {
		t.Errorf("expected call-2 first, got %s", records[1][0])
	}
	if records[1][9] != "" {
		t.Errorf("expected empty gap cell, got %q", records[1][9])
	}
	if records[2][9] != "2700" {
		t.Errorf("expected gap 2700, got %q", records[2][9])
	}
	if records[1][3] != "2024-05-23 10:50:00+02:00" {
		t.Errorf("unexpected timestamp rendering %q", records[1][3])
	}
	if records[2][1] != "0" {
		t.Errorf("expected zero duration rendered, got %q", records[2][1])
	}
}

type failingUploader struct{ called bool }

func (u *failingUploader) Upload(_ context.Context, _, _ string) error {
	u.called = true
	return os.ErrPermission
}

func TestDatasetSinkUploadFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	uploader := &failingUploader{}
	sink := NewDatasetSink(dir, uploader, zerolog.Nop())

	if err := sink.Export(context.Background(), sampleRows()); err != nil {
		t.Fatalf("upload failure should not fail the export: %v", err)
	}
	if !uploader.called {
		t.Error("expected the uploader to be invoked")
	}
	if _, err := os.Stat(filepath.Join(dir, DatasetName)); err != nil {
		t.Errorf("expected dataset file to exist: %v", err)
	}
}
