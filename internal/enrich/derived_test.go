package enrich

import (
	"testing"
	"time"

	"github.com/avelior/calex/internal/types"
	"github.com/avelior/calex/internal/window"
)

func at(day int, hour, minute int) time.Time {
	return time.Date(2024, 5, day, hour, minute, 0, 0, window.ExportZone)
}

func rowsAt(times ...time.Time) []types.CallRow {
	rows := make([]types.CallRow, len(times))
	for i, t := range times {
		rows[i] = types.CallRow{ID: string(rune('a' + i)), Timestamp: t}
	}
	return rows
}

func TestAssignSlot(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{9, 45, "09h30-10h30"},
		{9, 30, "09h30-10h30"},
		{8, 0, "Out of range"},
		{9, 29, "Out of range"},
		{12, 45, "12h30-13h30"},
		{18, 29, "17h30-18h30"},
		{18, 30, "Out of range"},
		{18, 31, "Out of range"},
		{23, 59, "Out of range"},
		{0, 0, "Out of range"},
	}

	for _, tt := range tests {
		got := AssignSlot(at(23, tt.hour, tt.minute))
		if got != tt.want {
			t.Errorf("AssignSlot(%02d:%02d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestComputeDerivedSortsDescending(t *testing.T) {
	rows := ComputeDerived(rowsAt(at(23, 10, 5), at(23, 10, 50), at(23, 9, 40)))

	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.After(rows[i-1].Timestamp) {
			t.Fatalf("rows not sorted descending: %v before %v", rows[i-1].Timestamp, rows[i].Timestamp)
		}
	}
}

func TestComputeDerivedFields(t *testing.T) {
	// Thursday 2024-05-23 09:45.
	rows := ComputeDerived(rowsAt(at(23, 9, 45)))

	row := rows[0]
	if row.Weekday != "Thursday" {
		t.Errorf("weekday = %q", row.Weekday)
	}
	if row.Hour != 9 {
		t.Errorf("hour = %d", row.Hour)
	}
	if row.Minute != "09:45" {
		t.Errorf("minute = %q", row.Minute)
	}
	if row.TimeSlot != "09h30-10h30" {
		t.Errorf("slot = %q", row.TimeSlot)
	}
	if row.GapSeconds != nil {
		t.Errorf("single record should have nil gap, got %v", *row.GapSeconds)
	}
}

func TestGapSameDay(t *testing.T) {
	rows := ComputeDerived(rowsAt(at(23, 10, 5), at(23, 10, 50)))

	if rows[0].GapSeconds != nil {
		t.Errorf("newest row should have nil gap, got %v", *rows[0].GapSeconds)
	}
	if rows[1].GapSeconds == nil {
		t.Fatal("expected a gap on the older row")
	}
	if *rows[1].GapSeconds != 2700 {
		t.Errorf("gap = %v, want 2700", *rows[1].GapSeconds)
	}
}

func TestGapNilAcrossLunchBreak(t *testing.T) {
	// Both endpoints sit outside the break; the interval spans it.
	tests := []struct {
		name  string
		times []time.Time
	}{
		{"late morning to early afternoon", []time.Time{at(23, 11, 50), at(23, 14, 10)}},
		{"noon to mid afternoon", []time.Time{at(23, 12, 0), at(23, 15, 30)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ComputeDerived(rowsAt(tt.times...))
			if rows[1].GapSeconds != nil {
				t.Errorf("pair straddling the lunch break should have nil gap, got %v", *rows[1].GapSeconds)
			}
		})
	}
}

func TestGapNilWhenEitherInLunchBreak(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
	}{
		{"older in break", []time.Time{at(23, 12, 45), at(23, 14, 30)}},
		{"newer in break", []time.Time{at(23, 11, 0), at(23, 13, 0)}},
		{"boundary 12:30 counts as break", []time.Time{at(23, 12, 30), at(23, 14, 5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ComputeDerived(rowsAt(tt.times...))
			if rows[1].GapSeconds != nil {
				t.Errorf("expected nil gap, got %v", *rows[1].GapSeconds)
			}
		})
	}
}

func TestGapAtLunchBreakEnd(t *testing.T) {
	// 14:00 is outside the break, so the pair qualifies.
	rows := ComputeDerived(rowsAt(at(23, 14, 0), at(23, 14, 45)))

	if rows[1].GapSeconds == nil {
		t.Fatal("expected a gap for a pair entirely after the break")
	}
	if *rows[1].GapSeconds != 2700 {
		t.Errorf("gap = %v, want 2700", *rows[1].GapSeconds)
	}
}

func TestGapNilAcrossDays(t *testing.T) {
	rows := ComputeDerived(rowsAt(at(23, 9, 45), at(24, 9, 45)))

	if rows[1].GapSeconds != nil {
		t.Errorf("cross-day pair should have nil gap, got %v", *rows[1].GapSeconds)
	}
}

func TestGapChain(t *testing.T) {
	rows := ComputeDerived(rowsAt(at(23, 9, 40), at(23, 10, 5), at(23, 10, 50)))

	if rows[0].GapSeconds != nil {
		t.Error("newest row should have nil gap")
	}
	if rows[1].GapSeconds == nil || *rows[1].GapSeconds != 2700 {
		t.Errorf("middle gap = %v, want 2700", rows[1].GapSeconds)
	}
	if rows[2].GapSeconds == nil || *rows[2].GapSeconds != 1500 {
		t.Errorf("oldest gap = %v, want 1500", rows[2].GapSeconds)
	}
}
