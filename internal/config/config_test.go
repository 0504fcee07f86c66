package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test Core defaults
	assert.NotEmpty(t, cfg.Core.HomeDir, "HomeDir should not be empty")
	assert.Contains(t, cfg.Core.HomeDir, ".planloom", "HomeDir should contain .planloom")
	assert.False(t, cfg.Core.Debug)

	// Test Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Test Tracing defaults
	assert.False(t, cfg.Tracing.Enabled)
	assert.Empty(t, cfg.Tracing.Endpoint)

	// Test Series defaults
	assert.Equal(t, "12:00", cfg.Series.DefaultTime)
	assert.Equal(t, 366, cfg.Series.MaxOccurrences)

	// Platforms default to nil, meaning the built-in limit table applies
	assert.Nil(t, cfg.Platforms)
}

func TestLoadValidConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
core:
  home_dir: /tmp/planloom-test
  debug: true

logging:
  level: debug
  format: text

tracing:
  enabled: true
  endpoint: localhost:4317
  insecure: true

series:
  default_time: "09:30"
  max_occurrences: 52

platforms:
  instagram:
    max_caption_length: 2000
    max_hashtags: 20
  x:
    max_caption_length: 280
    max_hashtags: 5
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values
	assert.Equal(t, "/tmp/planloom-test", cfg.Core.HomeDir)
	assert.True(t, cfg.Core.Debug)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)

	assert.Equal(t, "09:30", cfg.Series.DefaultTime)
	assert.Equal(t, 52, cfg.Series.MaxOccurrences)

	require.Len(t, cfg.Platforms, 2)
	assert.Equal(t, PlatformLimitConfig{MaxCaptionLength: 2000, MaxHashtags: 20}, cfg.Platforms["instagram"])
	assert.Equal(t, PlatformLimitConfig{MaxCaptionLength: 280, MaxHashtags: 5}, cfg.Platforms["x"])
}

func TestLoad_SparseFileInheritsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: warn
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)

	// The explicit key sticks, everything else inherits defaults
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "12:00", cfg.Series.DefaultTime)
	assert.Equal(t, 366, cfg.Series.MaxOccurrences)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadWithEnvironmentVariableInterpolation(t *testing.T) {
	// Set test environment variables
	os.Setenv("PLANLOOM_TEST_HOME", "/custom/planloom")
	os.Setenv("PLANLOOM_TEST_COLLECTOR", "collector.internal:4317")
	defer func() {
		os.Unsetenv("PLANLOOM_TEST_HOME")
		os.Unsetenv("PLANLOOM_TEST_COLLECTOR")
	}()

	// Create a temporary config file with environment variables
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
core:
  home_dir: ${PLANLOOM_TEST_HOME}

tracing:
  enabled: true
  endpoint: ${PLANLOOM_TEST_COLLECTOR}
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify environment variable interpolation
	assert.Equal(t, "/custom/planloom", cfg.Core.HomeDir)
	assert.Equal(t, "collector.internal:4317", cfg.Tracing.Endpoint)
}

func TestLoadWithMissingEnvironmentVariables(t *testing.T) {
	// Create a temporary config file with non-existent environment variables
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
core:
  home_dir: ${NONEXISTENT_VAR}
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify that missing environment variables are left as-is
	assert.Equal(t, "${NONEXISTENT_VAR}", cfg.Core.HomeDir)
}

func TestLoadWithDefaults_FileNotFound(t *testing.T) {
	validator := NewValidator()
	loader := NewConfigLoader(validator)

	// Try to load a non-existent file
	cfg, err := loader.LoadWithDefaults("/nonexistent/config.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Should return default configuration
	defaultCfg := DefaultConfig()
	assert.Equal(t, defaultCfg.Logging, cfg.Logging)
	assert.Equal(t, defaultCfg.Series, cfg.Series)
}

func TestLoadWithDefaults_FileExists(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
series:
  default_time: "18:00"
  max_occurrences: 26
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.LoadWithDefaults(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Should load from file, not defaults
	assert.Equal(t, "18:00", cfg.Series.DefaultTime)
	assert.Equal(t, 26, cfg.Series.MaxOccurrences)
}

func TestValidation_Success(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()

	err := validator.Validate(cfg)
	assert.NoError(t, err)
}

func TestValidation_NilConfig(t *testing.T) {
	validator := NewValidator()

	err := validator.Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is nil")
}

func TestValidation_UnknownLogLevel(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"

	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidation_UnknownLogFormat(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"

	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidation_NegativeMaxOccurrences(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Series.MaxOccurrences = -1

	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series.max_occurrences")
	assert.Contains(t, err.Error(), "must be at least 0")
}

func TestValidation_MaxOccurrencesTooHigh(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Series.MaxOccurrences = 20000

	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series.max_occurrences")
	assert.Contains(t, err.Error(), "must be at most 10000")
}

func TestValidation_NegativePlatformLimit(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Platforms = map[string]PlatformLimitConfig{
		"instagram": {MaxCaptionLength: -1, MaxHashtags: 10},
	}

	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_caption_length")
	assert.Contains(t, err.Error(), "must be at least 0")
}

func TestValidation_TracingEndpointRequired(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Endpoint = ""

	err := validator.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracing.endpoint must be set when tracing is enabled")
}

func TestValidation_BadSeriesClock(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name  string
		clock string
		valid bool
	}{
		{name: "padded clock", clock: "09:30", valid: true},
		{name: "unpadded hour", clock: "9:30", valid: true},
		{name: "empty clock is allowed", clock: "", valid: true},
		{name: "hour out of range", clock: "25:00", valid: false},
		{name: "not a clock", clock: "noon", valid: false},
		{name: "missing minutes", clock: "12", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Series.DefaultTime = tt.clock

			err := validator.Validate(cfg)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "series.default_time")
			}
		})
	}
}

func TestValidation_MultipleErrors(t *testing.T) {
	validator := NewValidator()
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Series.MaxOccurrences = -1

	err := validator.Validate(cfg)
	require.Error(t, err)

	// Should contain all validation errors
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "series.max_occurrences")
}

func TestLoadInvalidYAML(t *testing.T) {
	// Create a temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: info
  invalid yaml syntax here [[[
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// Load the config
	validator := NewValidator()
	loader := NewConfigLoader(validator)
	_, err = loader.Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidFilePath(t *testing.T) {
	validator := NewValidator()
	loader := NewConfigLoader(validator)

	_, err := loader.Load("/nonexistent/directory/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_UnmarshalError(t *testing.T) {
	// Create a config file with invalid types that will cause unmarshal errors
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
series:
  max_occurrences: "not a number"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	validator := NewValidator()
	loader := NewConfigLoader(validator)
	_, err = loader.Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestInterpolateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "single variable",
			input:    "${HOME}",
			envVars:  map[string]string{"HOME": "/home/user"},
			expected: "/home/user",
		},
		{
			name:     "multiple variables",
			input:    "${HOME}/${USER}/plans",
			envVars:  map[string]string{"HOME": "/home", "USER": "testuser"},
			expected: "/home/testuser/plans",
		},
		{
			name:     "missing variable",
			input:    "${MISSING_VAR}",
			envVars:  map[string]string{},
			expected: "${MISSING_VAR}",
		},
		{
			name:     "no variables",
			input:    "/static/path",
			envVars:  map[string]string{},
			expected: "/static/path",
		},
		{
			name:     "mixed content",
			input:    "prefix_${VAR}_suffix",
			envVars:  map[string]string{"VAR": "value"},
			expected: "prefix_value_suffix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			result := interpolateString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"MaxOccurrences", "max_occurrences"},
		{"DefaultTime", "default_time"},
		{"HomeDir", "home_dir"},
		{"simple", "simple"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := camelToSnake(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatFieldPath(t *testing.T) {
	tests := []struct {
		namespace string
		expected  string
	}{
		{"Config.Series.MaxOccurrences", "series.max_occurrences"},
		{"Config.Logging.Level", "logging.level"},
		{"Config.Core.HomeDir", "core.home_dir"},
		{"Config", "Config"},
	}

	for _, tt := range tests {
		t.Run(tt.namespace, func(t *testing.T) {
			result := formatFieldPath(tt.namespace)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestInterpolateEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name     string
		input    interface{}
		expected interface{}
	}{
		{
			name:     "map with string interpolation",
			input:    map[string]interface{}{"key": "${TEST_VAR}"},
			expected: map[string]interface{}{"key": "test_value"},
		},
		{
			name:     "nested map",
			input:    map[string]interface{}{"outer": map[string]interface{}{"inner": "${TEST_VAR}"}},
			expected: map[string]interface{}{"outer": map[string]interface{}{"inner": "test_value"}},
		},
		{
			name:     "array of strings",
			input:    []interface{}{"${TEST_VAR}", "static"},
			expected: []interface{}{"test_value", "static"},
		},
		{
			name:     "non-string value",
			input:    123,
			expected: 123,
		},
		{
			name:     "boolean value",
			input:    true,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := interpolateEnvVars(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDefaultHomeDir(t *testing.T) {
	homeDir := DefaultHomeDir()
	assert.NotEmpty(t, homeDir)
	assert.Contains(t, homeDir, ".planloom")
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath("/home/user/.planloom")
	assert.Equal(t, filepath.Join("/home/user/.planloom", "config.yaml"), path)
}

func TestResolveHomeDir(t *testing.T) {
	t.Run("explicit value wins", func(t *testing.T) {
		t.Setenv("PLANLOOM_HOME", "/from/env")
		assert.Equal(t, "/from/flag", ResolveHomeDir("/from/flag"))
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("PLANLOOM_HOME", "/from/env")
		assert.Equal(t, "/from/env", ResolveHomeDir(""))
	})

	t.Run("default when nothing set", func(t *testing.T) {
		t.Setenv("PLANLOOM_HOME", "")
		assert.Equal(t, DefaultHomeDir(), ResolveHomeDir(""))
	})
}
