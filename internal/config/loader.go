package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader reads planloom configuration files.
type ConfigLoader interface {
	// Load reads and validates the file at path.
	Load(path string) (*Config, error)
	// LoadWithDefaults behaves like Load but substitutes DefaultConfig
	// when no file exists at path.
	LoadWithDefaults(path string) (*Config, error)
}

// envPattern matches ${VAR_NAME} references inside string settings.
var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader returns a loader backed by viper. Every loaded Config
// passes through validator before it is returned.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{validator: validator}
}

// Load reads the YAML file at path. Keys absent from the file inherit their
// DefaultConfig values, so sparse configuration files are valid. String
// settings may reference environment variables as ${VAR_NAME}.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	seedDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolation runs on the raw settings tree, before unmarshaling, so
	// every string field picks up ${VAR} substitution.
	settings, ok := interpolateEnvVars(v.AllSettings()).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected config shape in %s", path)
	}

	resolved := viper.New()
	if err := resolved.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	var cfg Config
	if err := resolved.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads path if it exists and falls back to DefaultConfig
// otherwise.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, fmt.Errorf("default configuration validation failed: %w", err)
		}
		return cfg, nil
	}
	return l.Load(path)
}

// seedDefaults registers DefaultConfig values as viper's lowest-priority layer.
func seedDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("core.home_dir", defaults.Core.HomeDir)
	v.SetDefault("core.debug", defaults.Core.Debug)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", defaults.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", defaults.Tracing.Insecure)
	v.SetDefault("series.default_time", defaults.Series.DefaultTime)
	v.SetDefault("series.max_occurrences", defaults.Series.MaxOccurrences)
}

// interpolateEnvVars walks an arbitrary settings tree and substitutes
// ${VAR_NAME} references in every string it finds.
func interpolateEnvVars(data interface{}) interface{} {
	switch node := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(node))
		for key, value := range node {
			out[key] = interpolateEnvVars(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, value := range node {
			out[i] = interpolateEnvVars(value)
		}
		return out
	case string:
		return interpolateString(node)
	default:
		return node
	}
}

// interpolateString substitutes ${VAR_NAME} with the variable's value.
// Unset or empty variables leave the reference in place.
func interpolateString(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}
