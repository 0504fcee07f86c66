package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planloom/planloom/cmd/planloom/internal"
	"github.com/planloom/planloom/internal/plangraph"
)

var planOrderCmd = &cobra.Command{
	Use:   "order -f PLAN_FILE",
	Short: "Print the dependency-respecting execution order",
	Long: `Build a plan definition and print its nodes in topological order.

Every node appears after all of its depends_on prerequisites, so the
listing reads as a work schedule: the first rows have nothing blocking
them, and each later row waits only on rows above it. The order is
deterministic for a given plan, making it safe to diff across edits.

OUTPUT FORMATS:
  - text (default): table with position, title, type, status, schedule
  - yaml: structured YAML suitable for automation
  - json: structured JSON for programmatic processing`,
	Example: `  # Print the execution order
  planloom plan order -f plans/q1-launch.yaml

  # Include generated series occurrences in the ordering
  planloom plan order -f plans/q1-launch.yaml --expand-series

  # Feed positions into a scheduler
  planloom plan order -f plans/q1-launch.yaml --output json | jq '.[].id'`,
	RunE: runPlanOrder,
}

var (
	planOrderFile   string
	planOrderExpand bool
	planOrderOutput string
)

func init() {
	planCmd.AddCommand(planOrderCmd)

	planOrderCmd.Flags().StringVarP(&planOrderFile, "file", "f", "", "Plan definition YAML file path (required)")
	planOrderCmd.Flags().BoolVar(&planOrderExpand, "expand-series", false, "Expand series nodes before ordering")
	planOrderCmd.Flags().StringVar(&planOrderOutput, "output", "text", "Output format: text, yaml, json")
	_ = planOrderCmd.MarkFlagRequired("file")
}

// orderRow is one entry of the execution order in structured output.
type orderRow struct {
	Position  int    `json:"position" yaml:"position"`
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Type      string `json:"type" yaml:"type"`
	Status    string `json:"status" yaml:"status"`
	Scheduled string `json:"scheduledAt,omitempty" yaml:"scheduledAt,omitempty"`
}

// runPlanOrder implements the plan order command
func runPlanOrder(cmd *cobra.Command, args []string) error {
	switch planOrderOutput {
	case "text", "yaml", "json":
		// valid
	default:
		return internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("invalid output format: %s (must be text, yaml, or json)", planOrderOutput), nil)
	}

	result, err := loadDefinition(cmd, planOrderFile, planOrderExpand)
	if err != nil {
		return err
	}

	ordered := result.Plan.TopologicalSort()
	rows := make([]orderRow, 0, len(ordered))
	for i, node := range ordered {
		scheduled := formatScheduled(node)
		if scheduled == "-" {
			scheduled = ""
		}
		rows = append(rows, orderRow{
			Position:  i + 1,
			ID:        node.ID.String(),
			Title:     node.Title,
			Type:      node.Type.String(),
			Status:    node.Status.String(),
			Scheduled: scheduled,
		})
	}

	switch planOrderOutput {
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	default:
		return printOrderText(cmd, result.Plan, rows)
	}
}

// printOrderText renders the execution order as an aligned table.
func printOrderText(cmd *cobra.Command, plan *plangraph.Plan, rows []orderRow) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan: %s (%d nodes, %d edges)\n\n", plan.Name(), plan.NodeCount(), plan.EdgeCount())

	if len(rows) == 0 {
		fmt.Fprintln(out, "Plan has no nodes")
		return nil
	}

	formatter := internal.NewTextFormatter(out)
	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		scheduled := row.Scheduled
		if scheduled == "" {
			scheduled = "-"
		}
		tableRows = append(tableRows, []string{
			strconv.Itoa(row.Position), row.Title, row.Type, row.Status, scheduled,
		})
	}
	return formatter.PrintTable([]string{"#", "title", "type", "status", "scheduled"}, tableRows)
}
