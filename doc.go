// progressd pushes simulated job progress to browsers over Server-Sent Events.
//
// Architecture overview:
//   - HTTP: internal/api.Server serves the htmx page (GET /), runs a job for a
//     client id (POST /?uuid=) and holds SSE streams open (GET /progress-events?uuid=).
//   - Push: internal/push.Registry maps a client id to every open stream for it;
//     a push.Notifier renders each progress event into one flattened fragment and
//     sends it to all of them, dropping streams whose write fails.
//   - Jobs: internal/worker.Worker advances progress by a random step after each
//     pause until it reaches 100, then reports completion once.
//   - Observability: events are also fanned out to internal/progress.Hub, which
//     batches them into log and Prometheus sinks; zap logs, /metrics, optional
//     OpenTelemetry tracing.
//   - Configuration: Viper reads an optional file plus PROGRESS_* env vars (PORT
//     is honored for the listen port).
//
// Run locally: go run . serve [--config config.yaml]
package main
