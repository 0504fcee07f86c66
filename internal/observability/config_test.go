package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr string
	}{
		{
			name: "disabled config is always valid",
			cfg:  TracingConfig{Enabled: false},
		},
		{
			name: "valid otlp config",
			cfg: TracingConfig{
				Enabled:     true,
				Provider:    "otlp",
				Endpoint:    "localhost:4317",
				ServiceName: "planloom",
				SampleRate:  1.0,
			},
		},
		{
			name: "noop provider needs no endpoint",
			cfg: TracingConfig{
				Enabled:    true,
				Provider:   "noop",
				SampleRate: 0.5,
			},
		},
		{
			name: "provider is case insensitive",
			cfg: TracingConfig{
				Enabled:     true,
				Provider:    "OTLP",
				Endpoint:    "localhost:4317",
				ServiceName: "planloom",
				SampleRate:  1.0,
			},
		},
		{
			name: "unknown provider",
			cfg: TracingConfig{
				Enabled:     true,
				Provider:    "jaeger",
				Endpoint:    "localhost:4317",
				ServiceName: "planloom",
				SampleRate:  1.0,
			},
			wantErr: "invalid tracing provider",
		},
		{
			name: "sample rate below range",
			cfg: TracingConfig{
				Enabled:     true,
				Provider:    "otlp",
				Endpoint:    "localhost:4317",
				ServiceName: "planloom",
				SampleRate:  -0.1,
			},
			wantErr: "invalid sample rate",
		},
		{
			name: "sample rate above range",
			cfg: TracingConfig{
				Enabled:     true,
				Provider:    "otlp",
				Endpoint:    "localhost:4317",
				ServiceName: "planloom",
				SampleRate:  1.5,
			},
			wantErr: "invalid sample rate",
		},
		{
			name: "missing endpoint",
			cfg: TracingConfig{
				Enabled:     true,
				Provider:    "otlp",
				ServiceName: "planloom",
				SampleRate:  1.0,
			},
			wantErr: "endpoint is required",
		},
		{
			name: "missing service name",
			cfg: TracingConfig{
				Enabled:    true,
				Provider:   "otlp",
				Endpoint:   "localhost:4317",
				SampleRate: 1.0,
			},
			wantErr: "service name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr string
	}{
		{
			name: "valid json stderr config",
			cfg:  LoggingConfig{Level: "info", Format: "json", Output: "stderr"},
		},
		{
			name: "valid text stdout config",
			cfg:  LoggingConfig{Level: "debug", Format: "text", Output: "stdout"},
		},
		{
			name: "valid file output",
			cfg:  LoggingConfig{Level: "warn", Format: "json", Output: "/var/log/planloom.log"},
		},
		{
			name: "level is case insensitive",
			cfg:  LoggingConfig{Level: "ERROR", Format: "json", Output: "stderr"},
		},
		{
			name:    "unknown level",
			cfg:     LoggingConfig{Level: "trace", Format: "json", Output: "stderr"},
			wantErr: "invalid log level",
		},
		{
			name:    "unknown format",
			cfg:     LoggingConfig{Level: "info", Format: "xml", Output: "stderr"},
			wantErr: "invalid log format",
		},
		{
			name:    "empty output",
			cfg:     LoggingConfig{Level: "info", Format: "json"},
			wantErr: "output is required",
		},
		{
			name:    "relative file path",
			cfg:     LoggingConfig{Level: "info", Format: "json", Output: "logs/planloom.log"},
			wantErr: "invalid log output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestObservabilityError_Format(t *testing.T) {
	plain := NewObservabilityError(ErrShutdownTimeout, "shutdown took too long")
	assert.Equal(t, "[OBSERVABILITY_SHUTDOWN_TIMEOUT] shutdown took too long", plain.Error())

	wrapped := NewExporterConnectionError("localhost:4317", assert.AnError)
	assert.Contains(t, wrapped.Error(), "[OBSERVABILITY_EXPORTER_CONNECTION]")
	assert.Contains(t, wrapped.Error(), "localhost:4317")
	assert.ErrorIs(t, wrapped, assert.AnError)
}
