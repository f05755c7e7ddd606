package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

// grpc wins when both endpoints are set.
func (c OtlpConnConfig) useGrpc() bool {
	return c.GrpcEndpoint != ""
}

func (c OtlpConnConfig) configured() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

func (c OtlpConnConfig) endpoint() string {
	if c.useGrpc() {
		return c.GrpcEndpoint
	}
	return c.HttpEndpoint
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

// Enabled is false when no exporter endpoint is configured, in which case the
// global no-op providers stay in place.
func (c Config) Enabled() bool {
	return c.Otlp.Traces.configured() || c.Otlp.Metrics.configured()
}

type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

func (t Telemetry) Shutdown(ctx context.Context) error {
	var errlist []error
	if t.TracerProvider != nil {
		errlist = append(errlist, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errlist = append(errlist, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errlist...)
}

// Setup installs OTLP backed tracer and meter providers for the signals that
// have an endpoint configured.
func Setup(ctx context.Context, serviceName string, config Config) (Telemetry, error) {
	if !config.Enabled() {
		return Telemetry{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return Telemetry{}, err
	}

	var out Telemetry
	if traces := config.Otlp.Traces; traces.configured() {
		exporter, err := newSpanExporter(ctx, traces)
		if err != nil {
			return Telemetry{}, err
		}
		out.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(res),
		)
		otel.SetTracerProvider(out.TracerProvider)
	}
	if metrics := config.Otlp.Metrics; metrics.configured() {
		exporter, err := newMetricExporter(ctx, metrics)
		if err != nil {
			return Telemetry{}, errors.Join(err, out.Shutdown(ctx))
		}
		out.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(out.MeterProvider)
	}
	return out, nil
}

func logExporter(signal string, conn OtlpConnConfig) {
	transport := "http"
	if conn.useGrpc() {
		transport = "grpc"
	}
	slog.Debug("otlp exporter", "signal", signal, "transport", transport, "endpoint", conn.endpoint())
}

func newSpanExporter(ctx context.Context, conn OtlpConnConfig) (trace.SpanExporter, error) {
	logExporter("traces", conn)
	if conn.useGrpc() {
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(conn.GrpcEndpoint),
			otlptracegrpc.WithHeaders(conn.Headers),
		)
	}
	return otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(conn.HttpEndpoint),
		otlptracehttp.WithHeaders(conn.Headers),
	)
}

func newMetricExporter(ctx context.Context, conn OtlpConnConfig) (metric.Exporter, error) {
	logExporter("metrics", conn)
	if conn.useGrpc() {
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpointURL(conn.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(conn.Headers),
		)
	}
	return otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(conn.HttpEndpoint),
		otlpmetrichttp.WithHeaders(conn.Headers),
	)
}
