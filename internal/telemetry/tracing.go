// Package telemetry sets up OpenTelemetry tracing.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// InitTracerProvider initializes the global trace provider and attaches the
// given span processors, such as the OTLP batcher built by Setup or a test
// recorder.
func InitTracerProvider(
	ctx context.Context,
	serviceName string,
	processors ...sdktrace.SpanProcessor,
) (*sdktrace.TracerProvider, error) {
	if serviceName == "" {
		return nil, errors.New("service name required")
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}

// Config selects where spans are exported.
type Config struct {
	Enabled     bool
	ServiceName string
	// OTLPEndpoint is the collector host:port for OTLP over HTTP.
	OTLPEndpoint string
	// Insecure sends spans over plain HTTP.
	Insecure bool
}

// Setup installs a tracer provider that batches spans to an OTLP/HTTP
// collector and returns its shutdown hook, which flushes pending spans. When
// disabled the global no-op provider stays in place.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	if cfg.OTLPEndpoint == "" {
		return nil, errors.New("otlp endpoint required")
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	tp, err := InitTracerProvider(ctx, cfg.ServiceName, sdktrace.NewBatchSpanProcessor(exporter))
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}
