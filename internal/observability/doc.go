// Package observability provides tracing and logging infrastructure for Planloom.
//
// This package implements OpenTelemetry-based distributed tracing and structured
// logging with trace correlation. Spans emitted by the plan graph engine are
// exported through the provider configured here.
//
// Initialize tracing with InitTracing:
//
//	cfg := TracingConfig{
//	    Enabled:     true,
//	    Provider:    "otlp",
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "planloom",
//	    SampleRate:  1.0,
//	}
//
//	tp, err := InitTracing(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ShutdownTracing(ctx, tp)
//
// Supported tracing providers:
//
//   - otlp: Exports spans to an OpenTelemetry collector over gRPC
//   - noop: Records nothing; useful for tests and disabled environments
//
// When tracing is disabled the returned provider is a no-op with zero overhead.
//
// Structured logging is built on log/slog. NewLogger constructs a logger from a
// LoggingConfig, and WithTraceContext attaches the active trace and span IDs so
// log lines can be joined with exported spans:
//
//	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", Output: "stderr"})
//	logger = WithTraceContext(ctx, logger)
//	logger.Info("plan built", "plan_id", plan.ID())
package observability
