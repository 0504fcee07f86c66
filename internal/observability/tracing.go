package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/planloom/planloom/pkg/version"
)

const (
	defaultServiceName  = "planloom"
	defaultBatchTimeout = 5 * time.Second
)

// TracingOption customizes InitTracing beyond what TracingConfig carries.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	sampler      sdktrace.Sampler
	resource     *resource.Resource
	batchTimeout time.Duration
}

// WithSampler overrides the ratio sampler derived from cfg.SampleRate.
func WithSampler(sampler sdktrace.Sampler) TracingOption {
	return func(o *tracingOptions) {
		o.sampler = sampler
	}
}

// WithResource overrides the default service resource attached to spans.
func WithResource(res *resource.Resource) TracingOption {
	return func(o *tracingOptions) {
		o.resource = res
	}
}

// WithBatchTimeout sets the maximum delay before a partial span batch is
// exported.
func WithBatchTimeout(timeout time.Duration) TracingOption {
	return func(o *tracingOptions) {
		o.batchTimeout = timeout
	}
}

// InitTracing wires the trace pipeline described by cfg and installs it as
// the global OpenTelemetry tracer provider, so spans created through
// otel.Tracer anywhere in the process are exported by it.
//
// With tracing disabled, or with the "noop" provider selected, the returned
// provider records nothing, so callers never need to branch on whether
// tracing is on. The only exporting provider is "otlp" over gRPC.
func InitTracing(ctx context.Context, cfg TracingConfig, opts ...TracingOption) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return sdktrace.NewTracerProvider(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, WrapObservabilityError(ErrExporterConnection, "invalid tracing configuration", err)
	}

	switch strings.ToLower(cfg.Provider) {
	case "noop":
		return sdktrace.NewTracerProvider(), nil
	case "otlp":
	default:
		return nil, NewObservabilityError(ErrExporterConnection, fmt.Sprintf("unsupported tracing provider: %s", cfg.Provider))
	}

	options := tracingOptions{batchTimeout: defaultBatchTimeout}
	for _, opt := range opts {
		opt(&options)
	}
	if options.sampler == nil {
		options.sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}
	if options.resource == nil {
		res, err := serviceResource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		options.resource = res
	}

	exporter, err := newOTLPExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(options.batchTimeout),
		),
		sdktrace.WithSampler(options.sampler),
		sdktrace.WithResource(options.resource),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

// serviceResource describes this process to the collector. resource.New is
// used instead of merging with resource.Default to avoid schema URL
// conflicts between semconv versions.
func serviceResource(ctx context.Context, cfg TracingConfig) (*resource.Resource, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Version),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, WrapObservabilityError(ErrExporterConnection, "failed to create resource", err)
	}
	return res, nil
}

// newOTLPExporter dials the collector over gRPC. The connection is lazy, so
// errors here are configuration problems rather than connectivity ones.
func newOTLPExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	transport, err := transportSecurity(cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		transport,
	)
	if err != nil {
		return nil, NewExporterConnectionError(cfg.Endpoint, err)
	}
	return exporter, nil
}

// transportSecurity picks the gRPC transport for the exporter: a client
// certificate when configured, plaintext when InsecureMode is set, and
// system TLS otherwise.
func transportSecurity(cfg TracingConfig) (otlptracegrpc.Option, error) {
	switch {
	case cfg.TLSCertFile != "" && cfg.TLSKeyFile != "":
		creds, err := credentials.NewClientTLSFromFile(cfg.TLSCertFile, "")
		if err != nil {
			return nil, WrapObservabilityError(ErrExporterConnection, "failed to load TLS credentials", err)
		}
		return otlptracegrpc.WithTLSCredentials(creds), nil
	case cfg.InsecureMode:
		return otlptracegrpc.WithInsecure(), nil
	default:
		return otlptracegrpc.WithTLSCredentials(credentials.NewTLS(nil)), nil
	}
}

// ShutdownTracing flushes pending spans and releases the exporter. The
// context bounds how long the final export may take; a few seconds is
// usually enough for in-flight batches.
func ShutdownTracing(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		return WrapObservabilityError(ErrShutdownTimeout, "failed to shutdown tracer provider", err)
	}
	return nil
}
