package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracerProviderRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := InitTracerProvider(context.Background(), "progress-test", recorder)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "job")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "job", ended[0].Name())
	require.Contains(t, ended[0].Resource().Attributes(), attribute.String("service.name", "progress-test"))
}

func TestInitTracerProviderRequiresServiceName(t *testing.T) {
	_, err := InitTracerProvider(context.Background(), "")
	require.Error(t, err)
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupRequiresEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), Config{Enabled: true, ServiceName: "progress-test"})
	require.ErrorContains(t, err, "otlp endpoint")
}

func TestSetupExportsSpansToCollector(t *testing.T) {
	var (
		mu       sync.Mutex
		paths    []string
		payloads int
	)
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		if len(body) > 0 {
			payloads++
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	shutdown, err := Setup(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "progress-test",
		OTLPEndpoint: strings.TrimPrefix(collector.URL, "http://"),
		Insecure:     true,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "job")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, paths, "/v1/traces")
	require.Positive(t, payloads)
}
