package sinks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/realtime-progress/internal/progress"
)

// defaultStaleAfter is far above the pause between job steps.
const defaultStaleAfter = 5 * time.Minute

// PrometheusSink exports job lifecycle metrics: jobs started, completed and
// running, run time, step counts and the progress steps observed.
type PrometheusSink struct {
	jobsStarted   prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsRunning   prometheus.Gauge
	jobRuntime    prometheus.Histogram
	jobSteps      prometheus.Histogram
	progressSteps prometheus.Counter
	jobsAbandoned prometheus.Counter

	tracker    *jobTracker
	staleAfter time.Duration
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		jobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_jobs_started_total",
			Help: "Total simulated jobs that have started.",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_jobs_completed_total",
			Help: "Total simulated jobs that reached completion.",
		}),
		jobsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "progress_jobs_running",
			Help: "Jobs that have started but not reached 100%. Jobs silent for longer than the stale window are dropped.",
		}),
		jobRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "progress_job_runtime_seconds",
			Help:    "Wall time per completed job.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		jobSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "progress_job_steps",
			Help:    "Pause/advance iterations needed to reach completion.",
			Buckets: []float64{5, 10, 15, 20, 30, 50, 100, 1000},
		}),
		progressSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_events_total",
			Help: "Progress reports emitted by jobs, excluding completions.",
		}),
		jobsAbandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_jobs_abandoned_total",
			Help: "Jobs dropped from the running gauge after going silent, usually because events were shed under backpressure.",
		}),
		tracker:    newJobTracker(),
		staleAfter: defaultStaleAfter,
	}
	for _, collector := range []prometheus.Collector{
		s.jobsStarted,
		s.jobsCompleted,
		s.jobsRunning,
		s.jobRuntime,
		s.jobSteps,
		s.progressSteps,
		s.jobsAbandoned,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	var latest time.Time
	for _, evt := range batch {
		s.consumeEvent(evt)
		if evt.TS.After(latest) {
			latest = evt.TS
		}
	}
	if !latest.IsZero() {
		for range s.tracker.sweep(latest, s.staleAfter) {
			s.jobsRunning.Dec()
			s.jobsAbandoned.Inc()
		}
	}
	return nil
}

// consumeEvent treats the 100% report as the end of a run, so a dropped
// Done event does not leave the job counted as running.
func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageProgress:
		s.progressSteps.Inc()
		if s.tracker.start(evt.JobID, evt.TS) {
			s.jobsStarted.Inc()
			s.jobsRunning.Inc()
		}
		if evt.Percent >= progress.MaxPercent && s.tracker.complete(evt.JobID) {
			s.jobsRunning.Dec()
		}
	case progress.StageDone:
		s.jobsCompleted.Inc()
		if evt.Dur > 0 {
			s.jobRuntime.Observe(evt.Dur.Seconds())
		}
		s.jobSteps.Observe(float64(evt.Step))
		if s.tracker.complete(evt.JobID) {
			s.jobsRunning.Dec()
		}
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type jobTracker struct {
	mu      sync.Mutex
	running map[[16]byte]time.Time
}

func newJobTracker() *jobTracker {
	return &jobTracker{running: make(map[[16]byte]time.Time)}
}

// start records the job as seen at ts and reports whether it is new.
func (t *jobTracker) start(id [16]byte, ts time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.running[id]
	t.running[id] = ts
	return !ok
}

func (t *jobTracker) complete(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}

// sweep forgets jobs not seen for longer than staleAfter and returns how
// many were dropped.
func (t *jobTracker) sweep(now time.Time, staleAfter time.Duration) int {
	if staleAfter <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	dropped := 0
	for id, seen := range t.running {
		if now.Sub(seen) > staleAfter {
			delete(t.running, id)
			dropped++
		}
	}
	return dropped
}
