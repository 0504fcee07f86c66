package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpandCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "expand",
		RunE: runPlanExpand,
	}
	cmd.Flags().StringVarP(&planExpandFile, "file", "f", "", "Plan definition YAML file path (required)")
	cmd.Flags().StringVar(&planExpandSeries, "series", "", "Expand only the series with this definition ref")
	cmd.Flags().StringVar(&planExpandOutput, "output", "text", "Output format: text, yaml, json")
	cmd.SetContext(context.Background())
	return cmd
}

func TestPlanExpandCommand_Text(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)

	cmd := newExpandCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.RunE(cmd, []string{}))
	output := buf.String()

	assert.Contains(t, output, "Series: Weekly tips (ref tips)")
	assert.Contains(t, output, "4 occurrences across 1 platforms")
	assert.Contains(t, output, "Weekly tips #1")
	assert.Contains(t, output, "Weekly tips #4")
	assert.Contains(t, output, "2025-01-06 09:00")
	assert.Contains(t, output, "2025-01-27 09:00")
}

func TestPlanExpandCommand_JSON(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)

	cmd := newExpandCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))
	require.NoError(t, cmd.Flags().Set("output", "json"))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.RunE(cmd, []string{}))

	var previews []struct {
		Ref         string   `json:"ref"`
		Series      string   `json:"series"`
		Platforms   []string `json:"platforms"`
		Occurrences []struct {
			Index       int      `json:"index"`
			Title       string   `json:"title"`
			Platform    string   `json:"platform"`
			ScheduledAt string   `json:"scheduledAt"`
			Caption     string   `json:"caption"`
			Hashtags    []string `json:"hashtags"`
		} `json:"occurrences"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &previews))
	require.Len(t, previews, 1)

	preview := previews[0]
	assert.Equal(t, "tips", preview.Ref)
	assert.Equal(t, "Weekly tips", preview.Series)
	require.Len(t, preview.Occurrences, 4)

	first := preview.Occurrences[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "Weekly tips #1", first.Title)
	assert.Equal(t, "instagram", first.Platform)
	assert.Equal(t, "2025-01-06 09:00", first.ScheduledAt)
	assert.Equal(t, "One practical tip", first.Caption)
	assert.Equal(t, []string{"#tips"}, first.Hashtags)

	// Mondays a week apart
	assert.Equal(t, "2025-01-13 09:00", preview.Occurrences[1].ScheduledAt)
	assert.Equal(t, "2025-01-20 09:00", preview.Occurrences[2].ScheduledAt)
	assert.Equal(t, "2025-01-27 09:00", preview.Occurrences[3].ScheduledAt)
}

func TestPlanExpandCommand_SingleSeries(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)

	cmd := newExpandCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))
	require.NoError(t, cmd.Flags().Set("series", "tips"))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.RunE(cmd, []string{}))
	assert.Contains(t, buf.String(), "Series: Weekly tips (ref tips)")
}

func TestPlanExpandCommand_UnknownRef(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)

	cmd := newExpandCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))
	require.NoError(t, cmd.Flags().Set("series", "does-not-exist"))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.RunE(cmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown node ref: "does-not-exist"`)
}

func TestPlanExpandCommand_RefIsNotASeries(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)

	cmd := newExpandCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))
	require.NoError(t, cmd.Flags().Set("series", "teaser"))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.RunE(cmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a series")
}

func TestPlanExpandCommand_NoSeriesInPlan(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "flat.yaml", `
plan:
  name: Flat plan
  client_id: acme
nodes:
  - ref: one
    type: content
    title: First post
    spec:
      blueprint_id: bp_1
      platform: instagram
`)

	cmd := newExpandCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.RunE(cmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no series nodes to expand")
}
