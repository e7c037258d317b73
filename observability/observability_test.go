package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestAppStatsName(t *testing.T) {
	testcases := []struct {
		name     string
		expected string
	}{
		{"", "xtree/app/default"},
		{"  ", "xtree/app/default"},
		{"stress", "xtree/app/stress"},
	}
	for _, tc := range testcases {
		t.Run(tc.expected, func(tt *testing.T) {
			require.Equal(tt, tc.expected, appStatsName(tc.name))
		})
	}
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS()
	require.NoError(t, err)
	require.Greater(t, rss, uint64(0))
}

func TestInitMetricsExporter(t *testing.T) {
	shutdown, err := InitMetricsExporter(NoneMetricsExporter, nil, 0, 0)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitMetricsExporter("kafka", nil, 0, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown metrics exporter kafka")

	shutdown, err = InitMetricsExporter(PrometheusMetricsExporter, nil, 0, 0)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	buf := &bytes.Buffer{}
	shutdown, err = InitMetricsExporter(ConsoleMetricsExporter, buf, time.Hour, time.Second)
	require.NoError(t, err)
	counter, err := otel.Meter("test").Int64Counter("test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)
	// Shutdown flushes the pending metrics into the writer.
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "test.count")
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)

	ctx, cancel := context.WithCancel(context.Background())
	closed := make(chan struct{})
	InitAppStats(ctx, "test", func(ctx context.Context) error {
		defer close(closed)
		return mp.Shutdown(ctx)
	})

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := make(map[string]struct{})
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = struct{}{}
		}
	}
	require.Contains(t, names, "app.core.goroutines")
	require.Contains(t, names, "app.core.processes")
	require.Contains(t, names, "app.memory.rss")

	cancel()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("the shutdown callback is not invoked")
	}
}
