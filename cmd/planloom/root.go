package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
	"github.com/planloom/planloom/internal/config"
	"github.com/planloom/planloom/internal/observability"
	"github.com/planloom/planloom/pkg/version"
)

// Shared state initialized by loadConfig before any subcommand runs.
var (
	appConfig      *config.Config
	tracerProvider *sdktrace.TracerProvider
)

var rootCmd = &cobra.Command{
	Use:   "planloom",
	Short: "Planloom - Content Plan Graph Engine",
	Long: `Planloom models content plans as dependency graphs: posts, campaigns,
recurring series, and approval milestones become nodes, and the order
of work becomes edges. The engine enforces schedule windows,
per-platform content limits, and acyclic dependencies.

Plans are authored as YAML definition files and inspected, expanded,
exported, and verified through the plan subcommands.`,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: shutdownObservability,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs. It resolves the home
// directory and config file, loads configuration, and wires the global
// logger and tracer provider from it.
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags()
	if err != nil {
		return err
	}

	// Version, help, and completion work without configuration
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return nil
	}

	homeDir := config.ResolveHomeDir(flags.HomeDir)
	configFile := flags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	loader := config.NewConfigLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to load configuration", err)
	}
	cfg.Core.HomeDir = homeDir
	appConfig = cfg

	logger, err := buildLogger(cfg, flags)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to configure logging", err)
	}
	slog.SetDefault(logger)

	if cfg.Tracing.Enabled {
		provider, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
			Enabled:      true,
			Provider:     "otlp",
			Endpoint:     cfg.Tracing.Endpoint,
			ServiceName:  "planloom",
			SampleRate:   1.0,
			InsecureMode: cfg.Tracing.Insecure,
		})
		if err != nil {
			return internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
		}
		tracerProvider = provider
	}

	return nil
}

// buildLogger derives the logger from configuration, with --verbose and
// --quiet overriding the configured level. Logs go to stderr so command
// output on stdout stays clean for piping.
func buildLogger(cfg *config.Config, flags *GlobalFlags) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if cfg.Core.Debug || flags.IsVerbose() {
		level = "debug"
	}
	if flags.IsQuiet() {
		level = "error"
	}

	return observability.NewLogger(observability.LoggingConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	})
}

// shutdownObservability flushes buffered spans after the command
// finishes. Export failures are logged, not surfaced, so they cannot
// flip a successful command's exit code.
func shutdownObservability(cmd *cobra.Command, args []string) error {
	if tracerProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := observability.ShutdownTracing(ctx, tracerProvider); err != nil {
		slog.Warn("failed to shut down tracing", "error", err)
	}
	tracerProvider = nil
	return nil
}

// currentConfig returns the loaded configuration, falling back to
// defaults when the root bootstrap has not run.
func currentConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	return config.DefaultConfig()
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.GetOutputFormat() == FormatJSON {
			formatter := internal.NewFormatter(internal.FormatJSON, cmd.OutOrStdout())
			return formatter.PrintJSON(version.Get())
		}
		cmd.Println(version.String())
		return nil
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for Planloom.

To load completions:

Bash:

  $ source <(planloom completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ planloom completion bash > /etc/bash_completion.d/planloom
  # macOS:
  $ planloom completion bash > $(brew --prefix)/etc/bash_completion.d/planloom

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ planloom completion zsh > "${fpath[1]}/_planloom"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ planloom completion fish | source

  # To load completions for each session, execute once:
  $ planloom completion fish > ~/.config/fish/completions/planloom.fish

PowerShell:

  PS> planloom completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> planloom completion powershell > planloom.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
