// Package enrich turns raw HubSpot calls into export rows and computes the
// time-derived reporting fields over the assembled set.
package enrich

import (
	"strconv"
	"strings"
	"time"

	"github.com/avelior/calex/internal/types"
	"github.com/avelior/calex/internal/window"
)

// UnknownLabel is the sentinel for unresolved dispositions and owners.
const UnknownLabel = "Unknown"

// dispositionLabels maps the known HubSpot call outcome codes.
var dispositionLabels = map[string]string{
	"a4c4c377-d246-4b32-a13b-75a56a4cd0ff": "Left live message",
	"b2cf5968-551e-4856-9783-52b3da59a7d0": "Left voicemail",
	"73a0d17f-1163-4015-bdd5-ec830791da20": "No answer",
	"f240bbac-87c9-4f6e-bf70-924b57d47db7": "Connected",
	"17b47fee-58de-441e-a44c-c6300d46f273": "Wrong number",
	"9d9162e7-6cf3-4944-bf63-4dff82258764": "Busy",
}

// DispositionLabel resolves a disposition code to its label, falling back
// to the sentinel for unrecognized or absent codes.
func DispositionLabel(code string) string {
	if label, ok := dispositionLabels[code]; ok {
		return label
	}
	return UnknownLabel
}

// Normalize maps one raw call to a CallRow. The second return is false for
// records without a parseable timestamp; those are dropped from the export.
func Normalize(raw types.RawCall, owners map[string]string) (types.CallRow, bool) {
	ts := strings.TrimSpace(raw.Properties.Timestamp)
	if ts == "" {
		return types.CallRow{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return types.CallRow{}, false
	}

	owner, ok := owners[raw.Properties.OwnerID]
	if !ok || owner == "" {
		owner = UnknownLabel
	}

	return types.CallRow{
		ID:              raw.ID,
		DurationSeconds: durationSeconds(raw.Properties.Duration),
		Disposition:     DispositionLabel(raw.Properties.Disposition),
		Timestamp:       t.In(window.ExportZone),
		Owner:           owner,
	}, true
}

// NormalizeAll maps a fetched batch, dropping records without timestamps.
func NormalizeAll(raws []types.RawCall, owners map[string]string) []types.CallRow {
	rows := make([]types.CallRow, 0, len(raws))
	for _, raw := range raws {
		if row, ok := Normalize(raw, owners); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// durationSeconds converts the millisecond duration property, truncating
// toward zero. Absent or malformed values count as zero.
func durationSeconds(ms string) int {
	if ms == "" {
		return 0
	}
	v, err := strconv.Atoi(ms)
	if err != nil {
		return 0
	}
	return v / 1000
}
