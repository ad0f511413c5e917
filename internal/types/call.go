package types

import "time"

// CallProperties holds the projected HubSpot call properties. HubSpot
// returns every property as a string; absent properties decode to "".
type CallProperties struct {
	Duration    string `json:"hs_call_duration"`    // milliseconds
	Disposition string `json:"hs_call_disposition"` // disposition code (UUID)
	Timestamp   string `json:"hs_timestamp"`        // ISO-8601
	OwnerID     string `json:"hubspot_owner_id"`
}

// RawCall is a call engagement as returned by the search endpoint.
// Immutable once fetched.
type RawCall struct {
	ID         string         `json:"id"`
	Properties CallProperties `json:"properties"`
}

// CallRow is one row of the export dataset: a normalized call plus the
// derived reporting fields. Gap depends on neighbouring rows and is only
// filled in after the full set is sorted.
type CallRow struct {
	ID              string
	DurationSeconds int
	Disposition     string
	Timestamp       time.Time // localized to the export offset
	Owner           string
	Weekday         string
	Hour            int
	Minute          string // HH:MM
	TimeSlot        string
	GapSeconds      *float64 // nil for the newest row and across day/break boundaries
}
