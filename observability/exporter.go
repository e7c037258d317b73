package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xtree/lib/infra"
)

type MetricsExporterType string

const (
	NoneMetricsExporter       MetricsExporterType = "none"
	ConsoleMetricsExporter    MetricsExporterType = "stdout"
	PrometheusMetricsExporter MetricsExporterType = "prometheus"
)

// ShutdownFunc flushes and stops the meter provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Serves for test/dev environment.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (ShutdownFunc, error) {
	opts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
	if w != nil {
		opts = append(opts, stdoutmetric.WithWriter(w))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
// The metrics are registered into the prometheus default registerer.
func newPrometheusMetricsExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// InitMetricsExporter installs the global meter provider of the type.
// The console exporter writes into w (stdout if nil) every interval.
func InitMetricsExporter(typ MetricsExporterType, w io.Writer, interval, timeout time.Duration) (ShutdownFunc, error) {
	switch typ {
	case ConsoleMetricsExporter:
		if interval <= 0 {
			interval = 10 * time.Second
		}
		if timeout <= 0 {
			timeout = interval
		}
		shutdown, err := newConsoleMetricsExporter(w, interval, timeout)
		return shutdown, infra.WrapErrorStackWithMessage(err, "[observability] stdout metrics exporter")
	case PrometheusMetricsExporter:
		shutdown, err := newPrometheusMetricsExporter()
		return shutdown, infra.WrapErrorStackWithMessage(err, "[observability] prometheus metrics exporter")
	case NoneMetricsExporter, "":
		return noopShutdown, nil
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + string(typ))
}
