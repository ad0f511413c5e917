package enrich

import (
	"fmt"
	"sort"
	"time"

	"github.com/avelior/calex/internal/types"
)

// OutOfRangeLabel marks timestamps outside the business slots.
const OutOfRangeLabel = "Out of range"

// Business slots: nine one-hour buckets, the first starting at 09:30.
const (
	slotCount      = 9
	firstSlotStart = 9*3600 + 30*60 // seconds of day
)

// Lunch break [12:30, 14:00). Gaps spanning it are not meaningful.
const (
	lunchStart = 12*3600 + 30*60
	lunchEnd   = 14 * 3600
)

// ComputeDerived sorts rows by timestamp descending (stable) and fills in
// weekday, hour, minute, slot and the inter-call gap. The gap depends on
// the neighbouring row and can only be computed over the full sorted set.
func ComputeDerived(rows []types.CallRow) []types.CallRow {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})

	for i := range rows {
		t := rows[i].Timestamp
		rows[i].Weekday = t.Weekday().String()
		rows[i].Hour = t.Hour()
		rows[i].Minute = t.Format("15:04")
		rows[i].TimeSlot = AssignSlot(t)
		rows[i].GapSeconds = nil
	}

	// Row i's predecessor in descending order is the next more recent call.
	for i := 1; i < len(rows); i++ {
		recent, older := rows[i-1].Timestamp, rows[i].Timestamp
		if !sameDay(recent, older) {
			continue
		}
		if spansLunchBreak(older, recent) {
			continue
		}
		gap := recent.Sub(older).Seconds()
		rows[i].GapSeconds = &gap
	}

	return rows
}

// AssignSlot buckets a timestamp's time-of-day into one of the business
// slots, labelled "HHhMM-HHhMM".
func AssignSlot(t time.Time) string {
	sec := secondsOfDay(t)
	for i := 0; i < slotCount; i++ {
		start := firstSlotStart + i*3600
		if sec >= start && sec < start+3600 {
			end := start + 3600
			return fmt.Sprintf("%02dh%02d-%02dh%02d", start/3600, start%3600/60, end/3600, end%3600/60)
		}
	}
	return OutOfRangeLabel
}

// spansLunchBreak reports whether the same-day interval [older, recent]
// touches the lunch break. That covers pairs straddling the whole break as
// well as pairs with an endpoint inside it.
func spansLunchBreak(older, recent time.Time) bool {
	return secondsOfDay(older) < lunchEnd && secondsOfDay(recent) >= lunchStart
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
