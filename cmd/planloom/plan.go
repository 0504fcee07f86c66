package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
	"github.com/planloom/planloom/internal/config"
	"github.com/planloom/planloom/internal/plangraph"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build, inspect, and verify content plan graphs",
	Long: `Work with content plan graphs.

A plan definition is a YAML file declaring the plan header, its nodes
(content, campaigns, series, milestones), and the edges between them.
The plan subcommands build the definition through the engine, which
enforces every graph rule: schedule windows, per-platform content
limits, edge referential integrity, and dependency acyclicity.

Subcommands:
  validate  build a definition and report whether it satisfies all rules
  order     print the dependency-respecting execution order
  ready     list nodes whose dependencies are all completed
  expand    preview the content occurrences a series would generate
  export    build a definition and write the full graph snapshot
  verify    check an exported snapshot against the graph rules`,
}

// planOptionsFromConfig builds the engine options for this invocation:
// the process logger, platform limit overrides, and series expansion
// defaults.
func planOptionsFromConfig(cfg *config.Config) []plangraph.Option {
	opts := []plangraph.Option{
		plangraph.WithLogger(slog.Default()),
	}

	if len(cfg.Platforms) > 0 {
		overrides := make(map[string]plangraph.PlatformLimit, len(cfg.Platforms))
		for platform, limit := range cfg.Platforms {
			overrides[platform] = plangraph.PlatformLimit{
				MaxCaptionLength: limit.MaxCaptionLength,
				MaxHashtags:      limit.MaxHashtags,
			}
		}
		opts = append(opts, plangraph.WithLimits(overrides))
	}

	opts = append(opts, plangraph.WithSeriesDefaults(plangraph.SeriesDefaults{
		DefaultTime:    cfg.Series.DefaultTime,
		MaxOccurrences: cfg.Series.MaxOccurrences,
	}))

	return opts
}

// loadDefinition builds the plan declared in the definition file at
// path. Definition and engine errors pass through untouched so the
// error handler can map them to exit codes.
func loadDefinition(cmd *cobra.Command, path string, expandSeries bool) (*plangraph.BuildResult, error) {
	if path == "" {
		return nil, internal.WrapError(internal.ExitConfigError,
			"plan definition file required: use -f flag", nil)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("failed to resolve definition path: %s", path), err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("plan definition not found: %s", absPath), err)
	}

	return plangraph.LoadPlan(cmd.Context(), absPath, plangraph.BuildOptions{
		ExpandSeries: expandSeries,
		PlanOptions:  planOptionsFromConfig(currentConfig()),
	})
}

// formatScheduled renders a node's scheduled or due time for table
// output, preferring the most specific timestamp the node carries.
func formatScheduled(node *plangraph.Node) string {
	switch {
	case node.ScheduledAt != nil:
		return node.ScheduledAt.Format("2006-01-02 15:04")
	case node.DueDate != nil:
		return node.DueDate.Format("2006-01-02 15:04")
	case node.StartDate != nil && node.EndDate != nil:
		return fmt.Sprintf("%s .. %s",
			node.StartDate.Format("2006-01-02"), node.EndDate.Format("2006-01-02"))
	default:
		return "-"
	}
}
