package types

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusEmpty     = "empty"
	RunStatusFailed    = "failed"
)

// ExportRun records one export execution for DynamoDB persistence
type ExportRun struct {
	DateKey     string  `json:"dateKey" dynamodbav:"DateKey"`      // YYYY-MM-DD of run start (partition key)
	RunID       string  `json:"runId" dynamodbav:"RunID"`          // sort key
	Status      string  `json:"status" dynamodbav:"Status"`
	RangeStart  string  `json:"rangeStart" dynamodbav:"RangeStart"` // YYYY-MM-DD
	RangeEnd    string  `json:"rangeEnd" dynamodbav:"RangeEnd"`     // YYYY-MM-DD
	StartedAt   string  `json:"startedAt" dynamodbav:"StartedAt"`   // RFC3339
	FinishedAt  string  `json:"finishedAt" dynamodbav:"FinishedAt"` // RFC3339
	Days        int     `json:"days" dynamodbav:"Days"`
	RawCalls    int     `json:"rawCalls" dynamodbav:"RawCalls"`
	Rows        int     `json:"rows" dynamodbav:"Rows"`
	DurationSec float64 `json:"durationSec" dynamodbav:"DurationSec"`
}

// ProgressEvent is broadcast to websocket clients during a run.
type ProgressEvent struct {
	Type      string `json:"type"` // run_started, day_fetched, run_finished
	RunID     string `json:"runId"`
	Day       string `json:"day,omitempty"` // YYYY-MM-DD
	Calls     int    `json:"calls,omitempty"`
	DaysDone  int    `json:"daysDone,omitempty"`
	DaysTotal int    `json:"daysTotal,omitempty"`
	Status    string `json:"status,omitempty"`
	Rows      int    `json:"rows,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
}
