package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPlanDefinition is a full definition exercising every node type,
// the contains sugar, and explicit depends_on edges. The weekly series
// produces four occurrences (Jan 6, 13, 20, 27).
const testPlanDefinition = `
plan:
  name: Q1 launch
  client_id: acme
  start_date: 2025-01-01
  end_date: 2025-03-31

nodes:
  - ref: signoff
    type: milestone
    title: Creative sign-off
    spec:
      due_date: 2025-01-08
      approvers: [maya]

  - ref: teaser
    type: content
    title: Launch teaser
    spec:
      blueprint_id: bp_hook_v2
      platform: instagram
      scheduled_at: 2025-01-10
      caption: Something big is coming
      hashtags: ["#launch"]

  - ref: announcement
    type: content
    title: Launch announcement
    spec:
      blueprint_id: bp_announce
      platform: instagram
      scheduled_at: 2025-01-17

  - ref: launch
    type: campaign
    title: Spring launch
    contains: [teaser, announcement]
    spec:
      budget: 2500
      goals: [awareness]

  - ref: tips
    type: series
    title: Weekly tips
    spec:
      blueprint_id: bp_tips
      platforms: [instagram]
      start_date: 2025-01-06
      end_date: 2025-01-27
      recurrence:
        frequency: weekly
        day_of_week: monday
        time: "09:00"
      caption_template: One practical tip
      hashtag_templates: ["#tips"]

edges:
  - from: teaser
    to: signoff
    type: depends_on

  - from: announcement
    to: teaser
    type: depends_on
`

// writePlanFile writes a definition fixture into the test's temp dir.
func writePlanFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newValidateCommand builds a fresh command instance so flag state
// cannot leak between tests.
func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "validate",
		RunE: runPlanValidate,
	}
	cmd.Flags().StringVarP(&planValidateFile, "file", "f", "", "Plan definition YAML file path (required)")
	cmd.Flags().BoolVar(&planValidateExpand, "expand-series", false, "Expand series nodes before validating")
	cmd.SetContext(context.Background())
	return cmd
}

func TestPlanValidateCommand(t *testing.T) {
	tests := []struct {
		name          string
		setupFixtures func(t *testing.T, tmpDir string) string
		flags         map[string]string
		wantError     bool
		errorContains string
		outputChecks  []string
	}{
		{
			name: "missing file flag",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return ""
			},
			wantError:     true,
			errorContains: "plan definition file required",
		},
		{
			name: "file does not exist",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return filepath.Join(tmpDir, "nonexistent.yaml")
			},
			wantError:     true,
			errorContains: "plan definition not found",
		},
		{
			name: "invalid YAML",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "broken.yaml", `
plan:
  name: Broken
nodes:
  - bad yaml
    missing colon
`)
			},
			wantError:     true,
			errorContains: "invalid YAML",
		},
		{
			name: "edge references unknown ref",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "dangling.yaml", `
plan:
  name: Dangling
  client_id: acme
nodes:
  - ref: teaser
    type: content
    title: Teaser
    spec:
      blueprint_id: bp_1
      platform: instagram
edges:
  - from: teaser
    to: ghost
    type: depends_on
`)
			},
			wantError:     true,
			errorContains: `references unknown ref "ghost"`,
		},
		{
			name: "dependency cycle",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "cycle.yaml", `
plan:
  name: Cycle
  client_id: acme
nodes:
  - ref: a
    type: content
    title: A
    spec:
      blueprint_id: bp_1
      platform: instagram
  - ref: b
    type: content
    title: B
    spec:
      blueprint_id: bp_2
      platform: instagram
edges:
  - from: a
    to: b
    type: depends_on
  - from: b
    to: a
    type: depends_on
`)
			},
			wantError:     true,
			errorContains: "dependency cycle",
		},
		{
			name: "caption over platform limit",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "caption.yaml", fmt.Sprintf(`
plan:
  name: Long caption
  client_id: acme
nodes:
  - ref: post
    type: content
    title: Post
    spec:
      blueprint_id: bp_1
      platform: x
      caption: %s
`, strings.Repeat("a", 300)))
			},
			wantError:     true,
			errorContains: "exceeds x limit of 280",
		},
		{
			name: "scheduled outside plan window",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "window.yaml", `
plan:
  name: Windowed
  client_id: acme
  start_date: 2025-01-01
  end_date: 2025-01-31
nodes:
  - ref: late
    type: content
    title: Late post
    spec:
      blueprint_id: bp_1
      platform: instagram
      scheduled_at: 2025-02-15
`)
			},
			wantError:     true,
			errorContains: "outside plan date range",
		},
		{
			name: "valid plan",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)
			},
			outputChecks: []string{
				"✓ plan is valid",
				"Q1 launch (client acme)",
				"Nodes: 5 (content: 2, campaign: 1, series: 1, milestone: 1)",
				"Edges: 4",
			},
		},
		{
			name: "valid plan with series expansion",
			setupFixtures: func(t *testing.T, tmpDir string) string {
				return writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)
			},
			flags: map[string]string{"expand-series": "true"},
			outputChecks: []string{
				"✓ plan is valid",
				"Nodes: 9 (content: 6, campaign: 1, series: 1, milestone: 1)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldGlobalFlags := *globalFlags
			defer func() { *globalFlags = oldGlobalFlags }()

			tmpDir := t.TempDir()
			planFile := tt.setupFixtures(t, tmpDir)

			cmd := newValidateCommand()
			if planFile != "" {
				require.NoError(t, cmd.Flags().Set("file", planFile))
			}
			for k, v := range tt.flags {
				require.NoError(t, cmd.Flags().Set(k, v))
			}

			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)

			err := cmd.RunE(cmd, []string{})

			if tt.wantError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
				output := buf.String()
				for _, check := range tt.outputChecks {
					assert.Contains(t, output, check)
				}
			}
		})
	}
}

func TestPlanValidateCommand_InvalidPlanVerdict(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "cycle.yaml", `
plan:
  name: Cycle
  client_id: acme
nodes:
  - ref: a
    type: content
    title: A
    spec:
      blueprint_id: bp_1
      platform: instagram
  - ref: b
    type: content
    title: B
    spec:
      blueprint_id: bp_2
      platform: instagram
edges:
  - from: a
    to: b
    type: depends_on
  - from: b
    to: a
    type: depends_on
`)

	cmd := newValidateCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.RunE(cmd, []string{})
	require.Error(t, err)

	// The verdict lands on stdout so the reason is visible even when the
	// terse error goes to stderr.
	assert.Contains(t, buf.String(), "✗ plan is invalid")
	assert.Contains(t, buf.String(), "dependency cycle")
}

func TestPlanValidateCommand_JSONOutput(t *testing.T) {
	oldGlobalFlags := *globalFlags
	defer func() { *globalFlags = oldGlobalFlags }()
	globalFlags.OutputFormat = "json"

	tmpDir := t.TempDir()
	planFile := writePlanFile(t, tmpDir, "plan.yaml", testPlanDefinition)

	cmd := newValidateCommand()
	require.NoError(t, cmd.Flags().Set("file", planFile))

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.RunE(cmd, []string{}))

	var result struct {
		Valid       bool           `json:"valid"`
		Plan        string         `json:"plan"`
		ClientID    string         `json:"clientId"`
		Nodes       int            `json:"nodes"`
		Edges       int            `json:"edges"`
		NodesByType map[string]int `json:"nodesByType"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, "Q1 launch", result.Plan)
	assert.Equal(t, "acme", result.ClientID)
	assert.Equal(t, 5, result.Nodes)
	assert.Equal(t, 4, result.Edges)
	assert.Equal(t, 2, result.NodesByType["content"])
	assert.Equal(t, 1, result.NodesByType["milestone"])
}
