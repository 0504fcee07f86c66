package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText renders human-readable text
	FormatText OutputFormat = "text"
	// FormatJSON renders structured JSON
	FormatJSON OutputFormat = "json"
)

// GlobalFlags carries the persistent flags shared by every subcommand.
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	ConfigFile   string
	HomeDir      string
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags binds the persistent flag set to the root command.
func RegisterGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.StringVarP(&globalFlags.OutputFormat, "output", "o", "text", "Output format (text|json)")
	pf.StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: $PLANLOOM_HOME/config.yaml)")
	pf.StringVar(&globalFlags.HomeDir, "home", "", "Planloom home directory (default: ~/.planloom)")
}

// ParseGlobalFlags validates the global flag combination and returns the
// parsed set. Invalid combinations exit with the configuration error code.
func ParseGlobalFlags() (*GlobalFlags, error) {
	format := globalFlags.OutputFormat
	if format != string(FormatText) && format != string(FormatJSON) {
		return nil, internal.NewCLIError(internal.ExitConfigError,
			fmt.Sprintf("invalid output format: %s (must be text or json)", format))
	}

	if globalFlags.Verbose && globalFlags.Quiet {
		return nil, internal.NewCLIError(internal.ExitConfigError,
			"--verbose and --quiet cannot be used together")
	}

	return globalFlags, nil
}

// GetOutputFormat maps the raw flag value onto the OutputFormat enum.
// Anything that is not JSON renders as text.
func (f *GlobalFlags) GetOutputFormat() OutputFormat {
	switch f.OutputFormat {
	case string(FormatJSON):
		return FormatJSON
	default:
		return FormatText
	}
}

// IsVerbose reports whether verbose output was requested. Quiet takes
// precedence.
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// IsQuiet reports whether non-essential output should be suppressed.
func (f *GlobalFlags) IsQuiet() bool {
	return f.Quiet
}
