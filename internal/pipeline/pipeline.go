// Package pipeline drives a full export run: windowed parallel extraction,
// enrichment, derived metrics and the hand-off to the dataset sink.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avelior/calex/internal/config"
	"github.com/avelior/calex/internal/enrich"
	"github.com/avelior/calex/internal/metrics"
	"github.com/avelior/calex/internal/storage"
	"github.com/avelior/calex/internal/types"
	"github.com/avelior/calex/internal/window"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrRunInProgress is returned when a run is triggered while one is active.
var ErrRunInProgress = errors.New("an export run is already in progress")

// Fetcher retrieves the raw calls of one query window.
type Fetcher interface {
	SearchWindow(ctx context.Context, w window.Window) []types.RawCall
}

// OwnerDirectory resolves owner identifiers to display names.
type OwnerDirectory interface {
	FetchOwners(ctx context.Context) (map[string]string, error)
}

// Sink receives the finished dataset.
type Sink interface {
	Export(ctx context.Context, rows []types.CallRow) error
}

// Publisher broadcasts run progress.
type Publisher interface {
	Publish(event types.ProgressEvent)
}

// RunSummary describes one finished (or empty) run.
type RunSummary struct {
	RunID     string        `json:"runId"`
	Status    string        `json:"status"`
	Days      int           `json:"days"`
	RawCalls  int           `json:"rawCalls"`
	Rows      int           `json:"rows"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Pipeline orchestrates export runs. At most one run is active at a time.
type Pipeline struct {
	cfg       *config.Config
	fetcher   Fetcher
	owners    OwnerDirectory
	sink      Sink
	runs      storage.RunStore
	publisher Publisher
	logger    zerolog.Logger

	running atomic.Bool
	mu      sync.RWMutex
	last    *RunSummary
}

// New creates a Pipeline.
func New(cfg *config.Config, fetcher Fetcher, owners OwnerDirectory, sink Sink, runs storage.RunStore, publisher Publisher, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		owners:    owners,
		sink:      sink,
		runs:      runs,
		publisher: publisher,
		logger:    logger,
	}
}

// Last returns the most recent run summary, nil before the first run.
func (p *Pipeline) Last() *RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Running reports whether a run is currently active.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Run executes one full export. The owner map is built once up front, the
// date range fans out across the worker pool, and the merged record set is
// enriched, sorted and handed to the sink. An empty record set ends the
// run cleanly without touching the sink.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	return p.run(ctx)
}

// StartBackground claims the single-flight slot and executes the run in a
// new goroutine. ErrRunInProgress comes back synchronously, so a caller
// answering an HTTP trigger can report the conflict instead of dropping it.
func (p *Pipeline) StartBackground(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	go func() {
		if _, err := p.run(ctx); err != nil {
			p.logger.Error().Err(err).Msg("background run failed")
		}
	}()
	return nil
}

// run executes one export with the single-flight slot already held.
func (p *Pipeline) run(ctx context.Context) (*RunSummary, error) {
	defer p.running.Store(false)

	m := metrics.Get()
	m.RecordRunStarted()

	summary := &RunSummary{
		RunID:     uuid.New().String(),
		Status:    types.RunStatusRunning,
		StartedAt: time.Now(),
	}

	days := window.Days(p.cfg.RangeStart, p.cfg.RangeEnd)
	summary.Days = len(days)

	log := p.logger.With().Str("run_id", summary.RunID).Logger()
	log.Info().
		Str("range_start", p.cfg.RangeStart.Format("2006-01-02")).
		Str("range_end", p.cfg.RangeEnd.Format("2006-01-02")).
		Int("days", len(days)).
		Int("workers", p.cfg.Workers).
		Msg("export run started")

	p.saveRun(ctx, summary)
	p.publish(types.ProgressEvent{
		Type:      "run_started",
		RunID:     summary.RunID,
		DaysTotal: len(days),
	})

	// The owner map is built once and read-only for the rest of the run.
	owners, err := p.owners.FetchOwners(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("owner directory unavailable, names degrade to Unknown")
		owners = map[string]string{}
	}

	raw := p.fetchAll(ctx, summary.RunID, days)
	summary.RawCalls = len(raw)

	if len(raw) == 0 {
		log.Warn().Msg("no calls collected, skipping export")
		p.finish(ctx, summary, types.RunStatusEmpty)
		return summary, nil
	}
	log.Info().Int("calls", len(raw)).Msg("extraction complete")

	rows := enrich.NormalizeAll(raw, owners)
	rows = enrich.ComputeDerived(rows)
	summary.Rows = len(rows)

	if err := p.sink.Export(ctx, rows); err != nil {
		log.Error().Err(err).Msg("export failed")
		p.finish(ctx, summary, types.RunStatusFailed)
		return summary, err
	}

	p.finish(ctx, summary, types.RunStatusSucceeded)
	log.Info().
		Int("rows", summary.Rows).
		Dur("duration", summary.Duration).
		Msg("export run finished")
	return summary, nil
}

// fetchAll fans the days out across the worker pool. Each worker walks one
// day's windows sequentially; results merge into a single shared slice
// under the mutex. Day order in the merged slice is not guaranteed.
func (p *Pipeline) fetchAll(ctx context.Context, runID string, days []time.Time) []types.RawCall {
	var (
		mu       sync.Mutex
		raw      []types.RawCall
		daysDone atomic.Int64
		wg       sync.WaitGroup
	)

	jobs := make(chan time.Time)

	workers := p.cfg.Workers
	if workers > len(days) {
		workers = len(days)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := range jobs {
				calls := p.fetchDay(ctx, day)

				mu.Lock()
				raw = append(raw, calls...)
				mu.Unlock()

				done := daysDone.Add(1)
				p.logger.Debug().
					Str("day", day.Format("2006-01-02")).
					Int("calls", len(calls)).
					Msg("day fetched")
				p.publish(types.ProgressEvent{
					Type:      "day_fetched",
					RunID:     runID,
					Day:       day.Format("2006-01-02"),
					Calls:     len(calls),
					DaysDone:  int(done),
					DaysTotal: len(days),
				})
			}
		}()
	}

	for _, day := range days {
		jobs <- day
	}
	close(jobs)
	wg.Wait()

	return raw
}

// fetchDay walks one day's windows in order. A panic escaping the fetch is
// absorbed here: the day contributes nothing and the run continues.
func (p *Pipeline) fetchDay(ctx context.Context, day time.Time) (calls []types.RawCall) {
	defer func() {
		if r := recover(); r != nil {
			metrics.Get().RecordDayFailure()
			p.logger.Error().
				Str("day", day.Format("2006-01-02")).
				Interface("panic", r).
				Msg("day fetch failed")
			calls = nil
		}
	}()

	for _, w := range window.Windows(day) {
		calls = append(calls, p.fetcher.SearchWindow(ctx, w)...)
	}
	return calls
}

func (p *Pipeline) finish(ctx context.Context, summary *RunSummary, status string) {
	summary.Status = status
	summary.Duration = time.Since(summary.StartedAt)

	metrics.Get().RecordRunFinished(summary.Rows, status, summary.Duration)
	p.saveRun(ctx, summary)
	p.publish(types.ProgressEvent{
		Type:   "run_finished",
		RunID:  summary.RunID,
		Status: status,
		Rows:   summary.Rows,
	})

	p.mu.Lock()
	p.last = summary
	p.mu.Unlock()
}

// saveRun persists run history best-effort; failures never affect the run.
func (p *Pipeline) saveRun(ctx context.Context, summary *RunSummary) {
	run := types.ExportRun{
		DateKey:     summary.StartedAt.Format("2006-01-02"),
		RunID:       summary.RunID,
		Status:      summary.Status,
		RangeStart:  p.cfg.RangeStart.Format("2006-01-02"),
		RangeEnd:    p.cfg.RangeEnd.Format("2006-01-02"),
		StartedAt:   summary.StartedAt.Format(time.RFC3339),
		Days:        summary.Days,
		RawCalls:    summary.RawCalls,
		Rows:        summary.Rows,
		DurationSec: summary.Duration.Seconds(),
	}
	if summary.Status != types.RunStatusRunning {
		run.FinishedAt = summary.StartedAt.Add(summary.Duration).Format(time.RFC3339)
	}

	if err := p.runs.SaveExportRun(ctx, run); err != nil {
		p.logger.Error().Err(err).Msg("failed to save run history")
	}
}

func (p *Pipeline) publish(event types.ProgressEvent) {
	if p.publisher != nil {
		p.publisher.Publish(event)
	}
}
