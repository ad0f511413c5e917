// Package api exposes the export control endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/avelior/calex/internal/metrics"
	"github.com/avelior/calex/internal/pipeline"
	"github.com/avelior/calex/internal/storage"
	"github.com/avelior/calex/internal/window"
	"github.com/rs/zerolog"
)

// Runner is the part of the pipeline the handlers need.
type Runner interface {
	StartBackground(ctx context.Context) error
	Last() *pipeline.RunSummary
	Running() bool
}

// ExportHandler triggers runs and reports their status
type ExportHandler struct {
	runner Runner
	runs   storage.RunStore
	logger zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(runner Runner, runs storage.RunStore, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{runner: runner, runs: runs, logger: logger}
}

// TriggerRun starts an export run in the background
func (h *ExportHandler) TriggerRun(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The run outlives the request. Claiming the slot here keeps the 202
	// honest when two triggers race.
	if err := h.runner.StartBackground(context.Background()); err != nil {
		http.Error(w, "an export run is already in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// GetStats returns the last run summary and the fetch counters
func (h *ExportHandler) GetStats(w http.ResponseWriter, req *http.Request) {
	stats := map[string]interface{}{
		"running": h.runner.Running(),
		"last":    h.runner.Last(),
		"metrics": metrics.Get().Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetHistory returns the persisted runs for a day, newest first as stored
func (h *ExportHandler) GetHistory(w http.ResponseWriter, req *http.Request) {
	dateKey := req.URL.Query().Get("date")
	if dateKey == "" {
		dateKey = time.Now().In(window.ExportZone).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	runs, err := h.runs.GetExportRuns(req.Context(), dateKey)
	if err != nil {
		h.logger.Error().Err(err).Str("date", dateKey).Msg("failed to load run history")
		http.Error(w, "failed to load run history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"date": dateKey,
		"runs": runs,
	})
}
