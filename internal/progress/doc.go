// Package progress defines the job progress event, the Emitter contract the
// worker reports through, and a non-blocking Hub that batches events on a
// background goroutine for observability sinks such as Prometheus and
// structured logs.
package progress
