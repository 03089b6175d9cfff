// Package sinks implements progress consumers for the Hub: Prometheus job
// collectors and structured zap logging.
package sinks
