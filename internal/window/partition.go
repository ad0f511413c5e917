// Package window splits a calendar date range into the fixed query windows
// used against the HubSpot search API.
package window

import "time"

// ExportZone is the fixed offset every timestamp in the pipeline is
// expressed in. The upstream data is single-region; see the derived gap
// logic before changing this.
var ExportZone = time.FixedZone("UTC+2", 2*60*60)

// WindowHours is the width of one query window.
const WindowHours = 2

// WindowsPerDay is the number of windows covering a full day.
const WindowsPerDay = 24 / WindowHours

// Window is a half-open time range [Start, End) used as a single query
// unit. Millisecond-epoch bounds are what the search filter wants.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartMillis returns the inclusive lower bound in epoch milliseconds.
func (w Window) StartMillis() int64 { return w.Start.UnixMilli() }

// EndMillis returns the exclusive upper bound in epoch milliseconds.
func (w Window) EndMillis() int64 { return w.End.UnixMilli() }

// Days enumerates the calendar days from start to end inclusive, midnight
// in ExportZone. An inverted range yields nil.
func Days(start, end time.Time) []time.Time {
	first := midnight(start)
	last := midnight(end)
	if last.Before(first) {
		return nil
	}

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Windows returns the fixed sequence of non-overlapping windows covering
// the 24 hours of day, WindowHours wide each.
func Windows(day time.Time) []Window {
	start := midnight(day)
	windows := make([]Window, 0, WindowsPerDay)
	for i := 0; i < WindowsPerDay; i++ {
		ws := start.Add(time.Duration(i*WindowHours) * time.Hour)
		windows = append(windows, Window{Start: ws, End: ws.Add(WindowHours * time.Hour)})
	}
	return windows
}

func midnight(t time.Time) time.Time {
	t = t.In(ExportZone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ExportZone)
}
