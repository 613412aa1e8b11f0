package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// otlpEndpoint names one collector endpoint. Grpc wins when both are
// set.
type otlpEndpoint struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (e otlpEndpoint) kind() string {
	if e.GrpcEndpoint != "" {
		return "grpc"
	}
	return "http"
}

type otlpConfig struct {
	Traces  otlpEndpoint `json:"traces"`
	Metrics otlpEndpoint `json:"metrics"`
}

type config struct {
	Otlp otlpConfig `json:"otlp"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, c config) (*trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	endpoint := c.Otlp.Traces

	var exporter trace.SpanExporter
	var err error
	if endpoint.kind() == "grpc" {
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint.GrpcEndpoint),
			otlptracegrpc.WithHeaders(endpoint.Headers),
		)
	} else {
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(endpoint.HttpEndpoint),
			otlptracehttp.WithHeaders(endpoint.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("trace exporter initialized", "type", endpoint.kind())

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, c config) (*metric.MeterProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	endpoint := c.Otlp.Metrics

	var exporter metric.Exporter
	var err error
	if endpoint.kind() == "grpc" {
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(endpoint.Headers),
		)
	} else {
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(endpoint.HttpEndpoint),
			otlpmetrichttp.WithHeaders(endpoint.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("metric exporter initialized", "type", endpoint.kind())

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
		metric.WithResource(r),
	), nil
}
