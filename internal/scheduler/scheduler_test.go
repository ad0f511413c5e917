package scheduler

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avelior/calex/internal/pipeline"
	"github.com/rs/zerolog"
)

type countingRunner struct {
	runs int64
	err  error
}

func (r *countingRunner) Run(ctx context.Context) (*pipeline.RunSummary, error) {
	atomic.AddInt64(&r.runs, 1)
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.RunSummary{}, nil
}

func TestNewScheduler(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	runner := &countingRunner{}
	sched := NewScheduler(runner, 1*time.Second, logger)

	if sched == nil {
		t.Fatal("expected scheduler to be created")
	}

	if sched.interval != 1*time.Second {
		t.Errorf("expected interval 1s, got %v", sched.interval)
	}
}

func TestSchedulerTriggersRuns(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	runner := &countingRunner{}
	sched := NewScheduler(runner, 50*time.Millisecond, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan bool)
	go func() {
		sched.Start(ctx)
		done <- true
	}()

	<-done

	if atomic.LoadInt64(&runner.runs) == 0 {
		t.Error("expected at least one run to be triggered")
	}
}

func TestSchedulerToleratesBusyRunner(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	runner := &countingRunner{err: pipeline.ErrRunInProgress}
	sched := NewScheduler(runner, 50*time.Millisecond, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan bool)
	go func() {
		sched.Start(ctx)
		done <- true
	}()

	select {
	case <-done:
		// Scheduler kept ticking through the busy errors
	case <-time.After(1 * time.Second):
		t.Error("scheduler did not stop after context cancel")
	}

	if atomic.LoadInt64(&runner.runs) < 2 {
		t.Error("expected scheduler to keep ticking after busy error")
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	runner := &countingRunner{}
	sched := NewScheduler(runner, 100*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		sched.Start(ctx)
		done <- true
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Success
	case <-time.After(1 * time.Second):
		t.Error("scheduler did not stop within timeout after context cancel")
	}
}
