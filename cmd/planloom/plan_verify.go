package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/cmd/planloom/internal"
	"github.com/planloom/planloom/internal/plangraph"
	"github.com/planloom/planloom/internal/types"
)

var planVerifyCmd = &cobra.Command{
	Use:   "verify -f SNAPSHOT_FILE",
	Short: "Verify an exported plan snapshot",
	Long: `Verify that a previously exported snapshot still describes a plan the
engine would accept.

The snapshot is decoded (YAML for .yaml/.yml files, JSON otherwise)
and run through a series of checks:

  1. structure and referential integrity: unique ids, and every edge
     endpoint present in the snapshot
  2. node types, statuses, and versions are known and well-formed
  3. plan lifecycle state is consistent with its approval record
  4. graph rules replay: every node and edge is rebuilt through the
     engine, re-enforcing field constraints, platform limits, the
     schedule window, and dependency acyclicity

This catches snapshots that were hand-edited, produced by older
versions, or corrupted in transit.

Exit codes:
  0 - snapshot is valid
  2 - snapshot failed verification
  10 - invalid arguments or file not found`,
	Example: `  # Verify an exported snapshot
  planloom plan verify -f q1.snapshot.json

  # Verify a YAML snapshot with machine-readable output
  planloom plan verify -f q1.snapshot.yaml -o json`,
	RunE: runPlanVerify,
}

var planVerifyFile string

func init() {
	planCmd.AddCommand(planVerifyCmd)

	planVerifyCmd.Flags().StringVarP(&planVerifyFile, "file", "f", "", "Snapshot file path (required)")
	_ = planVerifyCmd.MarkFlagRequired("file")
}

// verifyCheck is the outcome of one verification step.
type verifyCheck struct {
	Name  string `json:"name" yaml:"name"`
	OK    bool   `json:"ok" yaml:"ok"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// runPlanVerify implements the plan verify command
func runPlanVerify(cmd *cobra.Command, args []string) error {
	if planVerifyFile == "" {
		return internal.WrapError(internal.ExitConfigError,
			"snapshot file required: use -f flag", nil)
	}

	absPath, err := filepath.Abs(planVerifyFile)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("failed to resolve snapshot path: %s", planVerifyFile), err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError,
			fmt.Sprintf("snapshot not found: %s", absPath), err)
	}

	snapshot, codec, err := decodeSnapshot(absPath, data)
	if err != nil {
		return internal.WrapError(internal.ExitInvalidPlan,
			fmt.Sprintf("failed to decode snapshot as %s", codec), err)
	}

	checks := []verifyCheck{
		runCheck("structure and referential integrity", func() error {
			_, err := plangraph.Import(snapshot, planOptionsFromConfig(currentConfig())...)
			return err
		}),
		runCheck("node types, statuses, and versions", func() error {
			return checkNodeFields(snapshot)
		}),
		runCheck("plan lifecycle state", func() error {
			return checkLifecycleState(snapshot)
		}),
		runCheck("graph rules replay", func() error {
			return replayGraph(snapshot, planOptionsFromConfig(currentConfig()))
		}),
	}

	valid := true
	for _, check := range checks {
		if !check.OK {
			valid = false
		}
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		formatter := internal.NewJSONFormatter(cmd.OutOrStdout())
		if err := formatter.PrintJSON(map[string]any{
			"valid":    valid,
			"snapshot": absPath,
			"format":   codec,
			"plan":     snapshot.Name,
			"clientId": snapshot.ClientID,
			"nodes":    len(snapshot.Nodes),
			"edges":    len(snapshot.Edges),
			"checks":   checks,
		}); err != nil {
			return err
		}
	} else {
		printVerifyText(cmd, absPath, codec, snapshot, checks, valid)
	}

	if !valid {
		return internal.WrapError(internal.ExitInvalidPlan, "verification failed", nil)
	}
	return nil
}

// decodeSnapshot picks the codec from the file extension and decodes.
func decodeSnapshot(path string, data []byte) (*plangraph.Snapshot, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		snapshot, err := plangraph.SnapshotFromYAML(data)
		return snapshot, "yaml", err
	default:
		snapshot, err := plangraph.SnapshotFromJSON(data)
		return snapshot, "json", err
	}
}

// runCheck captures one named check's outcome.
func runCheck(name string, fn func() error) verifyCheck {
	check := verifyCheck{Name: name, OK: true}
	if err := fn(); err != nil {
		check.OK = false
		check.Error = err.Error()
	}
	return check
}

// checkNodeFields validates per-node enumerations and version counters.
func checkNodeFields(snapshot *plangraph.Snapshot) error {
	for _, node := range snapshot.Nodes {
		if node == nil {
			return fmt.Errorf("snapshot contains a null node entry")
		}
		if !node.Type.Valid() {
			return fmt.Errorf("node %s has unknown type %q", node.ID, node.Type)
		}
		if !node.Status.Valid() {
			return fmt.Errorf("node %s has unknown status %q", node.ID, node.Status)
		}
		if node.Version < 1 {
			return fmt.Errorf("node %s has version %d, want at least 1", node.ID, node.Version)
		}
	}
	for _, edge := range snapshot.Edges {
		if edge == nil {
			return fmt.Errorf("snapshot contains a null edge entry")
		}
		if !edge.Type.Valid() {
			return fmt.Errorf("edge %s has unknown type %q", edge.ID, edge.Type)
		}
	}
	return nil
}

// checkLifecycleState validates the plan-level state against its
// approval record.
func checkLifecycleState(snapshot *plangraph.Snapshot) error {
	if !snapshot.Status.Valid() {
		return fmt.Errorf("unknown plan status %q", snapshot.Status)
	}
	if snapshot.Version < 1 {
		return fmt.Errorf("plan version is %d, want at least 1", snapshot.Version)
	}
	if snapshot.Status == plangraph.PlanStatusApproved && snapshot.ApprovedBy == "" {
		return fmt.Errorf("plan is approved but records no approver")
	}
	if snapshot.Status == plangraph.PlanStatusRejected && snapshot.RejectedBy == "" {
		return fmt.Errorf("plan is rejected but records no rejector")
	}
	return nil
}

// replayGraph rebuilds the snapshot through the engine's validating
// operations, so every constraint that guards live mutations is
// re-enforced on the stored graph.
func replayGraph(snapshot *plangraph.Snapshot, opts []plangraph.Option) error {
	replay, err := plangraph.New(plangraph.PlanConfig{
		ClientID:    snapshot.ClientID,
		Name:        snapshot.Name,
		Description: snapshot.Description,
		StartDate:   snapshot.StartDate,
		EndDate:     snapshot.EndDate,
	}, opts...)
	if err != nil {
		return err
	}

	replayIDs := make(map[types.ID]types.ID, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		created, err := replay.AddNode(specFromNode(node))
		if err != nil {
			return fmt.Errorf("node %q: %w", node.Title, err)
		}
		replayIDs[node.ID] = created.ID
	}

	for _, edge := range snapshot.Edges {
		sourceID, ok := replayIDs[edge.SourceID]
		if !ok {
			return fmt.Errorf("edge %s references missing source node %s", edge.ID, edge.SourceID)
		}
		targetID, ok := replayIDs[edge.TargetID]
		if !ok {
			return fmt.Errorf("edge %s references missing target node %s", edge.ID, edge.TargetID)
		}
		_, err := replay.AddEdge(plangraph.EdgeSpec{
			SourceID: sourceID,
			TargetID: targetID,
			Type:     edge.Type,
			Metadata: edge.Metadata,
		})
		if err != nil {
			return fmt.Errorf("edge %s -> %s: %w", edge.SourceID, edge.TargetID, err)
		}
	}

	return nil
}

// specFromNode reconstructs the insertion spec a stored node came from.
func specFromNode(n *plangraph.Node) plangraph.NodeSpec {
	spec := plangraph.NodeSpec{
		Type:        n.Type,
		Title:       n.Title,
		Description: n.Description,
		Metadata:    n.Metadata,
	}

	switch n.Type {
	case plangraph.NodeTypeContent:
		spec.Content = &plangraph.ContentSpec{
			BlueprintID: n.BlueprintID,
			Platform:    n.Platform,
			ScheduledAt: n.ScheduledAt,
			Caption:     n.Caption,
			Hashtags:    n.Hashtags,
			OfferID:     n.OfferID,
			SeriesID:    n.SeriesID,
			SeriesIndex: n.SeriesIndex,
		}
	case plangraph.NodeTypeCampaign:
		spec.Campaign = &plangraph.CampaignSpec{
			StartDate:      n.StartDate,
			EndDate:        n.EndDate,
			Budget:         n.Budget,
			Goals:          n.Goals,
			TargetAudience: n.TargetAudience,
		}
	case plangraph.NodeTypeSeries:
		series := &plangraph.SeriesSpec{
			BlueprintID:      n.BlueprintID,
			Platforms:        n.Platforms,
			CaptionTemplate:  n.CaptionTemplate,
			HashtagTemplates: n.HashtagTemplates,
		}
		if n.Recurrence != nil {
			series.Recurrence = *n.Recurrence
		}
		if n.StartDate != nil {
			series.StartDate = *n.StartDate
		}
		if n.EndDate != nil {
			series.EndDate = *n.EndDate
		}
		spec.Series = series
	case plangraph.NodeTypeMilestone:
		milestone := &plangraph.MilestoneSpec{
			Approvers:             n.Approvers,
			RequireAllApprovers:   n.RequireAllApprovers,
			AutoApproveAfterHours: n.AutoApproveAfterHours,
		}
		if n.DueDate != nil {
			milestone.DueDate = *n.DueDate
		}
		spec.Milestone = milestone
	}

	return spec
}

// printVerifyText renders the verification report.
func printVerifyText(cmd *cobra.Command, path, codec string, snapshot *plangraph.Snapshot, checks []verifyCheck, valid bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Verifying snapshot: %s (%s)\n\n", path, codec)

	for _, check := range checks {
		if check.OK {
			fmt.Fprintf(out, "%s %s\n", internal.VerdictMark(true), check.Name)
		} else {
			fmt.Fprintf(out, "%s %s: %s\n", internal.VerdictMark(false), check.Name, check.Error)
		}
	}

	fmt.Fprintf(out, "\nPlan: %s (client %s)\n", snapshot.Name, snapshot.ClientID)
	fmt.Fprintf(out, "Status: %s  Version: %d  Nodes: %d  Edges: %d\n\n",
		snapshot.Status, snapshot.Version, len(snapshot.Nodes), len(snapshot.Edges))

	if valid {
		fmt.Fprintf(out, "%s snapshot is valid\n", internal.VerdictMark(true))
	} else {
		fmt.Fprintf(out, "%s snapshot is invalid\n", internal.VerdictMark(false))
	}
}
