package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
	"github.com/planloom/planloom/internal/plangraph"
)

var planValidateCmd = &cobra.Command{
	Use:   "validate -f PLAN_FILE",
	Short: "Validate a plan definition",
	Long: `Build a plan definition through the engine and report whether it
satisfies every graph rule.

Validation covers:
  - YAML structure, unique refs, and resolvable edge endpoints
  - Node field constraints (required fields, platform caption and
    hashtag limits, recurrence rules, approver lists)
  - Scheduled times inside the plan date window
  - Dependency acyclicity

With --expand-series, every series node is expanded into its concrete
content occurrences first, so the generated nodes are validated too.

Exit codes:
  0 - plan is valid
  2 - plan failed validation
  10 - invalid arguments or file not found`,
	Example: `  # Validate a plan definition
  planloom plan validate -f plans/q1-launch.yaml

  # Validate including generated series occurrences
  planloom plan validate -f plans/q1-launch.yaml --expand-series

  # Machine-readable result
  planloom plan validate -f plans/q1-launch.yaml -o json`,
	RunE: runPlanValidate,
}

var (
	planValidateFile   string
	planValidateExpand bool
)

func init() {
	planCmd.AddCommand(planValidateCmd)

	planValidateCmd.Flags().StringVarP(&planValidateFile, "file", "f", "", "Plan definition YAML file path (required)")
	planValidateCmd.Flags().BoolVar(&planValidateExpand, "expand-series", false, "Expand series nodes before validating")
	_ = planValidateCmd.MarkFlagRequired("file")
}

// runPlanValidate implements the plan validate command
func runPlanValidate(cmd *cobra.Command, args []string) error {
	formatter := internal.NewFormatter(
		internal.OutputFormat(globalFlags.GetOutputFormat()), cmd.OutOrStdout())

	result, err := loadDefinition(cmd, planValidateFile, planValidateExpand)
	if err != nil {
		// Usage errors pass through; build failures get reported here so
		// the reason lands on stdout alongside the verdict.
		var cliErr *internal.CLIError
		if errors.As(err, &cliErr) {
			return err
		}
		_ = formatter.PrintError(fmt.Sprintf("plan is invalid: %v", err))
		return internal.WrapError(internal.ExitInvalidPlan, "validation failed", err)
	}

	plan := result.Plan
	counts := countNodeTypes(plan)

	if globalFlags.GetOutputFormat() == FormatJSON {
		return formatter.PrintJSON(map[string]any{
			"valid":    true,
			"plan":     plan.Name(),
			"clientId": plan.ClientID(),
			"nodes":    plan.NodeCount(),
			"edges":    plan.EdgeCount(),
			"nodesByType": map[string]int{
				"content":   counts[plangraph.NodeTypeContent],
				"campaign":  counts[plangraph.NodeTypeCampaign],
				"series":    counts[plangraph.NodeTypeSeries],
				"milestone": counts[plangraph.NodeTypeMilestone],
			},
		})
	}

	if err := formatter.PrintSuccess("plan is valid"); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nPlan:  %s (client %s)\n", plan.Name(), plan.ClientID())
	fmt.Fprintf(out, "Nodes: %d (content: %d, campaign: %d, series: %d, milestone: %d)\n",
		plan.NodeCount(),
		counts[plangraph.NodeTypeContent],
		counts[plangraph.NodeTypeCampaign],
		counts[plangraph.NodeTypeSeries],
		counts[plangraph.NodeTypeMilestone])
	fmt.Fprintf(out, "Edges: %d\n", plan.EdgeCount())
	return nil
}

// countNodeTypes tallies the plan's nodes per type.
func countNodeTypes(plan *plangraph.Plan) map[plangraph.NodeType]int {
	counts := make(map[plangraph.NodeType]int, 4)
	for _, node := range plan.Nodes() {
		counts[node.Type]++
	}
	return counts
}
