// Package apm wires OpenTelemetry tracing with pluggable span exporters.
package apm

import (
	"context"
	"time"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// TraceProvider flushes and shuts down span export.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type noopProvider struct{}

func (noopProvider) Stop() error { return nil }

type tracerOptions struct {
	exporter     sdktrace.SpanExporter
	exporterName string
}

// TracerOption selects and configures a span exporter.
type TracerOption func(*tracerOptions)

// WithZipkin exports spans to a Zipkin collector URL.
func WithZipkin(url string) TracerOption {
	return func(o *tracerOptions) {
		exp, err := zipkin.New(url)
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.exporterName = "zipkin"
	}
}

// WithOTLPGRPC exports spans over OTLP gRPC.
func WithOTLPGRPC(endpoint string, headers map[string]string, insecure bool) TracerOption {
	return func(o *tracerOptions) {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(headers),
		}
		if insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}

		exp, err := otlptracegrpc.New(context.Background(), opts...)
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.exporterName = "otlp-grpc"
	}
}

// WithOTLPHTTP exports spans over OTLP HTTP.
func WithOTLPHTTP(endpoint string, headers map[string]string) TracerOption {
	return func(o *tracerOptions) {
		exp, err := otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(headers),
		)
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.exporterName = "otlp-http"
	}
}

// WithConsole pretty-prints spans to stdout, intended for development.
func WithConsole() TracerOption {
	return func(o *tracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			panic(err)
		}
		o.exporter = exp
		o.exporterName = "console"
	}
}

// NewNoopTraceProvider returns a provider that exports nothing.
func NewNoopTraceProvider() TraceProvider {
	return noopProvider{}
}

// NewTraceProvider builds a tracer provider with the selected exporter and
// installs it globally. Without an exporter option it is a noop.
func NewTraceProvider(serviceName string, log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	opts := &tracerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.exporter == nil {
		log.Warn(context.Background(), "no span exporter configured, tracing disabled")
		return NewNoopTraceProvider()
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("otel.exporter", opts.exporterName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}
}

func (p *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.tp.Shutdown(ctx)
}
