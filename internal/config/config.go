package config

// Config is the root configuration for Planloom.
type Config struct {
	Core      CoreConfig                     `mapstructure:"core" yaml:"core"`
	Logging   LoggingConfig                  `mapstructure:"logging" yaml:"logging"`
	Tracing   TracingConfig                  `mapstructure:"tracing" yaml:"tracing"`
	Series    SeriesConfig                   `mapstructure:"series" yaml:"series"`
	Platforms map[string]PlatformLimitConfig `mapstructure:"platforms" yaml:"platforms,omitempty" validate:"omitempty,dive"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	HomeDir string `mapstructure:"home_dir" yaml:"home_dir"`
	Debug   bool   `mapstructure:"debug" yaml:"debug"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// TracingConfig contains distributed tracing configuration.
// Endpoint addresses an OpenTelemetry collector speaking OTLP over gRPC.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure,omitempty"`
}

// SeriesConfig contains defaults applied when series nodes are expanded
// into scheduled content.
type SeriesConfig struct {
	// DefaultTime is the HH:MM publish clock used when a recurrence rule
	// carries no time of its own.
	DefaultTime string `mapstructure:"default_time" yaml:"default_time" validate:"omitempty,clock"`

	// MaxOccurrences bounds how many occurrences one expansion may produce.
	// Zero disables the bound.
	MaxOccurrences int `mapstructure:"max_occurrences" yaml:"max_occurrences" validate:"min=0,max=10000"`
}

// PlatformLimitConfig overrides the content limits for one platform.
// Platforms absent from the configuration keep their built-in limits.
type PlatformLimitConfig struct {
	MaxCaptionLength int `mapstructure:"max_caption_length" yaml:"max_caption_length" validate:"min=0"`
	MaxHashtags      int `mapstructure:"max_hashtags" yaml:"max_hashtags" validate:"min=0"`
}
