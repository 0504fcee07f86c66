package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ConfigValidator checks a Config before the engine consumes it.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

type configValidator struct {
	validate *validator.Validate
}

// NewValidator builds a ConfigValidator with the custom tag set registered.
func NewValidator() ConfigValidator {
	v := validator.New()
	_ = v.RegisterValidation("clock", isClockValue)
	return &configValidator{validate: v}
}

// isClockValue implements the "clock" tag: an HH:MM wall-clock value,
// zero-padded or not.
func isClockValue(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

// Validate runs tag validation plus the cross-field rules, reporting every
// problem found rather than stopping at the first.
func (v *configValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var problems []string
	if err := v.validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validation error: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		problems = append(problems, "tracing.endpoint must be set when tracing is enabled")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
}

// describeFieldError renders one field error under its config-file key.
func describeFieldError(fe validator.FieldError) string {
	path := formatFieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", path, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", path, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, fe.Param(), fe.Value())
	case "clock":
		return fmt.Sprintf("%s must be a HH:MM clock value (got: %v)", path, fe.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s' (got: %v)", path, fe.Tag(), fe.Value())
	}
}

// formatFieldPath converts a validator namespace such as
// "Config.Series.MaxOccurrences" into its config-file form
// "series.max_occurrences". Map keys pass through untouched, so
// "Config.Platforms[instagram].MaxHashtags" stays readable.
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return namespace
	}

	converted := make([]string, len(parts)-1)
	for i, part := range parts[1:] {
		converted[i] = camelToSnake(part)
	}
	return strings.Join(converted, ".")
}

// camelToSnake lowers a Go field name into its snake_case config key.
func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
