// Package api hosts the HTTP server, middleware, and handlers of the progress
// demo. Notable routes:
//   - GET / issues a client id and renders the page bound to it.
//   - POST /?uuid=<id> runs a job for the id and re-renders the page.
//   - GET /progress-events?uuid=<id> opens the SSE stream for the id.
//   - GET /healthz, /readyz for probes and GET /metrics for Prometheus.
package api
