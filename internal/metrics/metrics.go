// Package metrics exposes Prometheus collectors for HTTP traffic and push
// channel delivery.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	pushChannelsRegistered     prometheus.Counter
	pushChannelsPruned         *prometheus.CounterVec
	pushChannelsActive         prometheus.Gauge
	pushFragmentsSent          *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"method", "route"},
		)

		pushChannelsRegistered = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "push_channels_registered_total",
				Help: "Total push channels registered by subscribe requests.",
			},
		)

		pushChannelsPruned = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "push_channels_pruned_total",
				Help: "Push channels dropped after a failed write, labeled by reason.",
			},
			[]string{"reason"},
		)

		pushChannelsActive = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "push_channels_active",
				Help: "Push channels currently held by the registry.",
			},
		)

		pushFragmentsSent = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "push_fragments_sent_total",
				Help: "Fragments accepted by push channels, labeled by kind.",
			},
			[]string{"kind"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveChannelRegistered records a newly registered push channel.
func ObserveChannelRegistered() {
	Init()
	pushChannelsRegistered.Inc()
	pushChannelsActive.Inc()
}

// ObserveChannelPruned records a push channel dropped from the registry.
func ObserveChannelPruned(reason string) {
	Init()
	pushChannelsPruned.WithLabelValues(reason).Inc()
	pushChannelsActive.Dec()
}

// ObserveFragmentSent records one fragment accepted by a channel.
func ObserveFragmentSent(kind string) {
	Init()
	pushFragmentsSent.WithLabelValues(kind).Inc()
}
