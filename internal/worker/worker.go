// Package worker runs the simulated long-running job and reports its
// progress through a progress.Emitter.
package worker

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/progress"
)

const tracerName = "github.com/JakeFAU/realtime-progress/internal/worker"

// Clock abstracts time for the step loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Rand draws the per-step increment.
type Rand interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Config controls Worker behavior.
type Config struct {
	Interval     time.Duration
	MaxIncrement int
	MaxSteps     int
}

const (
	defaultInterval     = 500 * time.Millisecond
	defaultMaxIncrement = 10
	defaultMaxSteps     = 1000
)

// Result summarizes one job run.
type Result struct {
	JobID    string
	Steps    int
	Duration time.Duration
}

// Worker executes simulated jobs.
type Worker struct {
	clock    Clock
	rnd      Rand
	observer progress.Emitter
	tracer   trace.Tracer
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Worker. A nil rnd uses math/rand/v2; observer receives
// every event alongside the per-run emitter and may be nil.
func New(clock Clock, rnd Rand, observer progress.Emitter, cfg Config, logger *zap.Logger) *Worker {
	if rnd == nil {
		rnd = globalRand{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval < 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxIncrement <= 0 {
		cfg.MaxIncrement = defaultMaxIncrement
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	return &Worker{
		clock:    clock,
		rnd:      rnd,
		observer: observer,
		tracer:   otel.Tracer(tracerName),
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one job for clientID, blocking until it completes. Progress
// starts at 0, advances by a random step in [0, MaxIncrement) after each
// pause, and is clamped to 100; a single Done event follows the 100 report.
// Run is not cancelable: ctx only scopes tracing. After MaxSteps advances
// progress is forced to 100 so the loop always terminates.
func (w *Worker) Run(ctx context.Context, clientID string, emitter progress.Emitter) Result {
	jobID := uuid.New()
	_, span := w.tracer.Start(ctx, "worker.Run", trace.WithAttributes(
		attribute.String("progress.client_id", clientID),
		attribute.String("progress.job_id", jobID.String()),
	))
	defer span.End()

	out := progress.Tee(emitter, w.observer)
	id := progress.UUIDToBytes(jobID)
	logger := w.logger.With(zap.String("client_id", clientID), zap.String("job_id", jobID.String()))
	logger.Info("job started")

	start := w.clock.Now()
	percent, step := 0, 0
	out.Emit(progress.NewProgress(clientID, id, start, step, percent))
	for percent < progress.MaxPercent {
		w.clock.Sleep(w.cfg.Interval)
		step++
		percent = w.advance(percent, step)
		out.Emit(progress.NewProgress(clientID, id, w.clock.Now(), step, percent))
	}

	end := w.clock.Now()
	dur := end.Sub(start)
	if dur < 0 {
		dur = 0
	}
	out.Emit(progress.NewDone(clientID, id, end, step, dur))

	span.SetAttributes(attribute.Int("progress.steps", step))
	logger.Info("job completed", zap.Int("steps", step), zap.Duration("dur", dur))
	return Result{JobID: jobID.String(), Steps: step, Duration: dur}
}

func (w *Worker) advance(percent, step int) int {
	if step >= w.cfg.MaxSteps {
		if percent < progress.MaxPercent {
			w.logger.Warn("job hit step limit; forcing completion",
				zap.Int("steps", step), zap.Int("percent", percent))
		}
		return progress.MaxPercent
	}
	return min(percent+w.rnd.IntN(w.cfg.MaxIncrement), progress.MaxPercent)
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}
