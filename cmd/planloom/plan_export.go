package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
)

var planExportCmd = &cobra.Command{
	Use:   "export -f PLAN_FILE",
	Short: "Build a plan and write its graph snapshot",
	Long: `Build a plan definition and write the resulting graph as a snapshot.

The snapshot is the engine's complete wire form: plan header, lifecycle
state, every node with its full field set, and every edge. It is
self-contained and can be re-imported or verified later with
'plan verify'. All timestamps are RFC 3339.

With --expand-series, series nodes are expanded first so the snapshot
carries the concrete content occurrences instead of just the rules
that generate them.`,
	Example: `  # Export a snapshot as JSON to stdout
  planloom plan export -f plans/q1-launch.yaml

  # Export with expanded series as YAML to a file
  planloom plan export -f plans/q1-launch.yaml --expand-series --format yaml --out q1.snapshot.yaml

  # Round-trip: export then verify
  planloom plan export -f plans/q1-launch.yaml --out q1.json && planloom plan verify -f q1.json`,
	RunE: runPlanExport,
}

var (
	planExportFile   string
	planExportExpand bool
	planExportFormat string
	planExportOut    string
)

func init() {
	planCmd.AddCommand(planExportCmd)

	planExportCmd.Flags().StringVarP(&planExportFile, "file", "f", "", "Plan definition YAML file path (required)")
	planExportCmd.Flags().BoolVar(&planExportExpand, "expand-series", false, "Expand series nodes before exporting")
	planExportCmd.Flags().StringVar(&planExportFormat, "format", "json", "Snapshot format: json or yaml")
	planExportCmd.Flags().StringVar(&planExportOut, "out", "", "Write the snapshot to this file instead of stdout")
	_ = planExportCmd.MarkFlagRequired("file")
}

// runPlanExport implements the plan export command
func runPlanExport(cmd *cobra.Command, args []string) error {
	switch planExportFormat {
	case "json", "yaml":
		// valid
	default:
		return internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("invalid snapshot format: %s (must be json or yaml)", planExportFormat), nil)
	}

	result, err := loadDefinition(cmd, planExportFile, planExportExpand)
	if err != nil {
		return err
	}

	snapshot := result.Plan.Export()

	var data []byte
	if planExportFormat == "yaml" {
		data, err = snapshot.ToYAML()
	} else {
		data, err = snapshot.ToJSON()
	}
	if err != nil {
		return err
	}

	if planExportOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if err := os.WriteFile(planExportOut, data, 0o644); err != nil {
		return internal.WrapError(internal.ExitError,
			fmt.Sprintf("failed to write snapshot to %s", planExportOut), err)
	}

	formatter := internal.NewFormatter(
		internal.OutputFormat(globalFlags.GetOutputFormat()), cmd.OutOrStdout())
	return formatter.PrintSuccess(fmt.Sprintf("exported %d nodes and %d edges to %s",
		result.Plan.NodeCount(), result.Plan.EdgeCount(), planExportOut))
}
