package config

import (
	"github.com/planloom/planloom/internal/plangraph"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	series := plangraph.DefaultSeriesDefaults()

	return &Config{
		Core: CoreConfig{
			HomeDir: DefaultHomeDir(),
			Debug:   false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
		Series: SeriesConfig{
			DefaultTime:    series.DefaultTime,
			MaxOccurrences: series.MaxOccurrences,
		},
	}
}
