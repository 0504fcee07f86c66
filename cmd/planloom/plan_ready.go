package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
)

var planReadyCmd = &cobra.Command{
	Use:   "ready -f PLAN_FILE",
	Short: "List nodes that are ready to start",
	Long: `Build a plan definition and list the nodes whose work can begin now.

A node is ready when it is still pending and every node it depends on
has completed. Nodes already in progress, completed, or cancelled never
appear, and neither do pending nodes still waiting on a prerequisite.

In a freshly built plan no node is completed yet, so this lists the
nodes with no depends_on prerequisites at all: the starting frontier.`,
	Example: `  # Show what can start right now
  planloom plan ready -f plans/q1-launch.yaml

  # Machine-readable listing
  planloom plan ready -f plans/q1-launch.yaml -o json`,
	RunE: runPlanReady,
}

var (
	planReadyFile   string
	planReadyExpand bool
)

func init() {
	planCmd.AddCommand(planReadyCmd)

	planReadyCmd.Flags().StringVarP(&planReadyFile, "file", "f", "", "Plan definition YAML file path (required)")
	planReadyCmd.Flags().BoolVar(&planReadyExpand, "expand-series", false, "Expand series nodes before evaluating readiness")
	_ = planReadyCmd.MarkFlagRequired("file")
}

// runPlanReady implements the plan ready command
func runPlanReady(cmd *cobra.Command, args []string) error {
	formatter := internal.NewFormatter(
		internal.OutputFormat(globalFlags.GetOutputFormat()), cmd.OutOrStdout())

	result, err := loadDefinition(cmd, planReadyFile, planReadyExpand)
	if err != nil {
		return err
	}

	plan := result.Plan
	ready := plan.ReadyNodes()

	if globalFlags.GetOutputFormat() == FormatJSON {
		rows := make([]map[string]string, 0, len(ready))
		for _, node := range ready {
			rows = append(rows, map[string]string{
				"id":        node.ID.String(),
				"title":     node.Title,
				"type":      node.Type.String(),
				"platform":  node.Platform,
				"scheduled": formatScheduled(node),
			})
		}
		return formatter.PrintJSON(map[string]any{
			"plan":  plan.Name(),
			"total": plan.NodeCount(),
			"ready": rows,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan: %s\n", plan.Name())
	fmt.Fprintf(out, "%d of %d nodes ready to start\n\n", len(ready), plan.NodeCount())

	if len(ready) == 0 {
		fmt.Fprintln(out, "No nodes are ready: every pending node is waiting on a prerequisite")
		return nil
	}

	rows := make([][]string, 0, len(ready))
	for _, node := range ready {
		platform := node.Platform
		if platform == "" {
			platform = "-"
		}
		rows = append(rows, []string{
			node.Title, node.Type.String(), platform, formatScheduled(node),
		})
	}
	return internal.NewTextFormatter(out).PrintTable(
		[]string{"title", "type", "platform", "scheduled"}, rows)
}
