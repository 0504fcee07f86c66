package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planloom/planloom/cmd/planloom/internal"
	"github.com/planloom/planloom/internal/plangraph"
	"github.com/planloom/planloom/internal/types"
)

var planExpandCmd = &cobra.Command{
	Use:   "expand -f PLAN_FILE",
	Short: "Preview the content a series would generate",
	Long: `Build a plan definition and preview the content occurrences its
series nodes would generate, without inserting anything.

Each series is expanded with its recurrence rule: one occurrence per
matching date per platform, numbered in schedule order, with captions
and hashtags instantiated from the series templates. The preview shows
exactly the nodes that --expand-series would add on other commands.

By default every series in the plan is expanded. Use --series with the
definition's node ref to preview a single one.`,
	Example: `  # Preview all series in the plan
  planloom plan expand -f plans/q1-launch.yaml

  # Preview one series by its definition ref
  planloom plan expand -f plans/q1-launch.yaml --series weekly-tips

  # Count occurrences per platform
  planloom plan expand -f plans/q1-launch.yaml --output json | jq '.[].occurrences[].platform' | sort | uniq -c`,
	RunE: runPlanExpand,
}

var (
	planExpandFile   string
	planExpandSeries string
	planExpandOutput string
)

func init() {
	planCmd.AddCommand(planExpandCmd)

	planExpandCmd.Flags().StringVarP(&planExpandFile, "file", "f", "", "Plan definition YAML file path (required)")
	planExpandCmd.Flags().StringVar(&planExpandSeries, "series", "", "Expand only the series with this definition ref")
	planExpandCmd.Flags().StringVar(&planExpandOutput, "output", "text", "Output format: text, yaml, json")
	_ = planExpandCmd.MarkFlagRequired("file")
}

// seriesPreview is the expansion of one series in structured output.
type seriesPreview struct {
	Ref         string              `json:"ref" yaml:"ref"`
	Series      string              `json:"series" yaml:"series"`
	Platforms   []string            `json:"platforms" yaml:"platforms"`
	Occurrences []occurrencePreview `json:"occurrences" yaml:"occurrences"`
}

// occurrencePreview is one generated content item.
type occurrencePreview struct {
	Index       int      `json:"index" yaml:"index"`
	Title       string   `json:"title" yaml:"title"`
	Platform    string   `json:"platform" yaml:"platform"`
	ScheduledAt string   `json:"scheduledAt" yaml:"scheduledAt"`
	Caption     string   `json:"caption,omitempty" yaml:"caption,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
}

// runPlanExpand implements the plan expand command
func runPlanExpand(cmd *cobra.Command, args []string) error {
	switch planExpandOutput {
	case "text", "yaml", "json":
		// valid
	default:
		return internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("invalid output format: %s (must be text, yaml, or json)", planExpandOutput), nil)
	}

	result, err := loadDefinition(cmd, planExpandFile, false)
	if err != nil {
		return err
	}

	targets, err := expandTargets(result)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return internal.NewCLIError(internal.ExitConfigError, "plan has no series nodes to expand")
	}

	previews := make([]seriesPreview, 0, len(targets))
	for _, target := range targets {
		specs, err := result.Plan.ExpandSeries(target.id)
		if err != nil {
			return err
		}

		node, err := result.Plan.GetNode(target.id)
		if err != nil {
			return err
		}

		preview := seriesPreview{
			Ref:       target.ref,
			Series:    node.Title,
			Platforms: node.Platforms,
		}
		for _, spec := range specs {
			occurrence := occurrencePreview{
				Index:    spec.Content.SeriesIndex,
				Title:    spec.Title,
				Platform: spec.Content.Platform,
				Caption:  spec.Content.Caption,
				Hashtags: spec.Content.Hashtags,
			}
			if spec.Content.ScheduledAt != nil {
				occurrence.ScheduledAt = spec.Content.ScheduledAt.Format("2006-01-02 15:04")
			}
			preview.Occurrences = append(preview.Occurrences, occurrence)
		}
		previews = append(previews, preview)
	}

	switch planExpandOutput {
	case "json":
		data, err := json.MarshalIndent(previews, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(previews)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	default:
		return printExpandText(cmd, previews)
	}
}

// seriesTarget pairs a series node id with its definition ref.
type seriesTarget struct {
	ref string
	id  types.ID
}

// expandTargets resolves which series nodes to expand: the one named by
// --series, or every series in the plan in ref order.
func expandTargets(result *plangraph.BuildResult) ([]seriesTarget, error) {
	if planExpandSeries != "" {
		id, ok := result.NodeRefs[planExpandSeries]
		if !ok {
			return nil, internal.NewCLIError(internal.ExitConfigError,
				fmt.Sprintf("unknown node ref: %q", planExpandSeries))
		}
		return []seriesTarget{{ref: planExpandSeries, id: id}}, nil
	}

	targets := make([]seriesTarget, 0)
	for ref, id := range result.NodeRefs {
		node, err := result.Plan.GetNode(id)
		if err != nil {
			return nil, err
		}
		if node.Type == plangraph.NodeTypeSeries {
			targets = append(targets, seriesTarget{ref: ref, id: id})
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ref < targets[j].ref })
	return targets, nil
}

// printExpandText renders series previews as per-series tables.
func printExpandText(cmd *cobra.Command, previews []seriesPreview) error {
	out := cmd.OutOrStdout()
	formatter := internal.NewTextFormatter(out)

	for i, preview := range previews {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Series: %s (ref %s)\n", preview.Series, preview.Ref)
		fmt.Fprintf(out, "%d occurrences across %d platforms\n\n",
			len(preview.Occurrences), len(preview.Platforms))

		rows := make([][]string, 0, len(preview.Occurrences))
		for _, occurrence := range preview.Occurrences {
			rows = append(rows, []string{
				strconv.Itoa(occurrence.Index),
				occurrence.Platform,
				occurrence.ScheduledAt,
				occurrence.Title,
			})
		}
		if err := formatter.PrintTable([]string{"#", "platform", "scheduled", "title"}, rows); err != nil {
			return err
		}
	}
	return nil
}
