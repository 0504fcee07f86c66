package plangraph

import (
	"time"

	"github.com/planloom/planloom/internal/types"
)

// NodeSpec describes a node to be added to a plan. Exactly one variant
// field matching Type must be set.
type NodeSpec struct {
	Type        NodeType       `mapstructure:"type"`
	Title       string         `mapstructure:"title"`
	Description string         `mapstructure:"description"`
	Metadata    map[string]any `mapstructure:"metadata"`

	Content   *ContentSpec   `mapstructure:"content"`
	Campaign  *CampaignSpec  `mapstructure:"campaign"`
	Series    *SeriesSpec    `mapstructure:"series"`
	Milestone *MilestoneSpec `mapstructure:"milestone"`
}

// ContentSpec describes a single content item.
type ContentSpec struct {
	BlueprintID string     `mapstructure:"blueprint_id"`
	Platform    string     `mapstructure:"platform"`
	ScheduledAt *time.Time `mapstructure:"scheduled_at"`
	Caption     string     `mapstructure:"caption"`
	Hashtags    []string   `mapstructure:"hashtags"`
	OfferID     string     `mapstructure:"offer_id"`

	// SeriesID and SeriesIndex back-reference the series node that
	// produced this content through expansion. They are set by the
	// expander, not by hand-written specs.
	SeriesID    types.ID `mapstructure:"series_id"`
	SeriesIndex int      `mapstructure:"series_index"`
}

// CampaignSpec describes a campaign grouping node. Containment of
// content in a campaign is expressed with part_of edges, not fields.
type CampaignSpec struct {
	StartDate      *time.Time `mapstructure:"start_date"`
	EndDate        *time.Time `mapstructure:"end_date"`
	Budget         float64    `mapstructure:"budget"`
	Goals          []string   `mapstructure:"goals"`
	TargetAudience string     `mapstructure:"target_audience"`
}

// SeriesSpec describes a recurring content series.
type SeriesSpec struct {
	BlueprintID      string     `mapstructure:"blueprint_id"`
	Platforms        []string   `mapstructure:"platforms"`
	Recurrence       Recurrence `mapstructure:"recurrence"`
	StartDate        time.Time  `mapstructure:"start_date"`
	EndDate          time.Time  `mapstructure:"end_date"`
	CaptionTemplate  string     `mapstructure:"caption_template"`
	HashtagTemplates []string   `mapstructure:"hashtag_templates"`
}

// MilestoneSpec describes an approval checkpoint.
type MilestoneSpec struct {
	DueDate               time.Time `mapstructure:"due_date"`
	Approvers             []string  `mapstructure:"approvers"`
	RequireAllApprovers   bool      `mapstructure:"require_all_approvers"`
	AutoApproveAfterHours int       `mapstructure:"auto_approve_after_hours"`
}

// Validate checks the spec envelope and its variant against the given
// limit table. It returns a GraphError with code invalid_spec on
// failure.
func (s NodeSpec) Validate(limits LimitTable) error {
	if !s.Type.Valid() {
		return NewSpecErrorf("unknown node type: %q", s.Type)
	}
	if s.Title == "" {
		return NewSpecError("node title is required")
	}

	variants := 0
	if s.Content != nil {
		variants++
	}
	if s.Campaign != nil {
		variants++
	}
	if s.Series != nil {
		variants++
	}
	if s.Milestone != nil {
		variants++
	}
	if variants != 1 {
		return NewSpecErrorf("node spec must set exactly one variant, got %d", variants)
	}

	switch s.Type {
	case NodeTypeContent:
		if s.Content == nil {
			return NewSpecError("content node spec must set the content variant")
		}
		return s.Content.Validate(limits)
	case NodeTypeCampaign:
		if s.Campaign == nil {
			return NewSpecError("campaign node spec must set the campaign variant")
		}
		return s.Campaign.Validate()
	case NodeTypeSeries:
		if s.Series == nil {
			return NewSpecError("series node spec must set the series variant")
		}
		return s.Series.Validate()
	case NodeTypeMilestone:
		if s.Milestone == nil {
			return NewSpecError("milestone node spec must set the milestone variant")
		}
		return s.Milestone.Validate()
	}
	return nil
}

// Validate checks the required content fields and the platform limits.
func (c ContentSpec) Validate(limits LimitTable) error {
	if c.BlueprintID == "" {
		return NewSpecError("content blueprint_id is required")
	}
	if c.Platform == "" {
		return NewSpecError("content platform is required")
	}
	if limit, ok := limits[c.Platform]; ok {
		if limit.MaxCaptionLength > 0 && len([]rune(c.Caption)) > limit.MaxCaptionLength {
			return NewSpecErrorf("caption exceeds %s limit of %d characters",
				c.Platform, limit.MaxCaptionLength)
		}
		if limit.MaxHashtags > 0 && len(c.Hashtags) > limit.MaxHashtags {
			return NewSpecErrorf("hashtag count %d exceeds %s limit of %d",
				len(c.Hashtags), c.Platform, limit.MaxHashtags)
		}
	}
	return nil
}

// Validate checks the campaign fields.
func (c CampaignSpec) Validate() error {
	if c.Budget < 0 {
		return NewSpecError("campaign budget cannot be negative")
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return NewSpecError("campaign end_date is before start_date")
	}
	return nil
}

// Validate checks the series fields and its recurrence rule.
func (s SeriesSpec) Validate() error {
	if s.BlueprintID == "" {
		return NewSpecError("series blueprint_id is required")
	}
	if len(s.Platforms) == 0 {
		return NewSpecError("series requires at least one platform")
	}
	for i, platform := range s.Platforms {
		if platform == "" {
			return NewSpecErrorf("series platform %d is empty", i)
		}
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return NewSpecError("series start_date and end_date are required")
	}
	if s.EndDate.Before(s.StartDate) {
		return NewSpecError("series end_date is before start_date")
	}
	return s.Recurrence.Validate()
}

// Validate checks the milestone fields.
func (m MilestoneSpec) Validate() error {
	if m.DueDate.IsZero() {
		return NewSpecError("milestone due_date is required")
	}
	if len(m.Approvers) == 0 {
		return NewSpecError("milestone requires at least one approver")
	}
	seen := make(map[string]bool, len(m.Approvers))
	for _, approver := range m.Approvers {
		if approver == "" {
			return NewSpecError("milestone approver id is empty")
		}
		if seen[approver] {
			return NewSpecErrorf("duplicate approver: %s", approver)
		}
		seen[approver] = true
	}
	if m.AutoApproveAfterHours < 0 {
		return NewSpecError("auto_approve_after_hours cannot be negative")
	}
	return nil
}

// EdgeSpec describes an edge to be added to a plan.
type EdgeSpec struct {
	SourceID types.ID       `mapstructure:"source_id"`
	TargetID types.ID       `mapstructure:"target_id"`
	Type     EdgeType       `mapstructure:"type"`
	Metadata map[string]any `mapstructure:"metadata"`
}

// Validate checks the edge endpoints and type.
func (s EdgeSpec) Validate() error {
	if s.SourceID.IsZero() {
		return NewSpecError("edge source_id is required")
	}
	if s.TargetID.IsZero() {
		return NewSpecError("edge target_id is required")
	}
	if s.SourceID == s.TargetID {
		return NewSpecErrorf("edge cannot connect %s to itself", s.SourceID)
	}
	if !s.Type.Valid() {
		return NewSpecErrorf("unknown edge type: %q", s.Type)
	}
	return nil
}

// NodeUpdate enumerates the mutable fields of a node. Nil pointer fields
// and nil slices leave the stored value unchanged; set fields replace
// it. Structural fields (type, variant selection, approver lists,
// recurrence rules) are immutable after creation.
type NodeUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *NodeStatus `json:"status,omitempty"`

	// Content fields
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Caption     *string    `json:"caption,omitempty"`
	Hashtags    []string   `json:"hashtags,omitempty"`

	// Campaign fields
	Budget         *float64 `json:"budget,omitempty"`
	Goals          []string `json:"goals,omitempty"`
	TargetAudience *string  `json:"targetAudience,omitempty"`

	// Milestone fields
	DueDate *time.Time `json:"dueDate,omitempty"`

	// Metadata replaces the stored map wholesale when set.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate checks the update fields that carry constrained values.
func (u NodeUpdate) Validate() error {
	if u.Status != nil && !u.Status.Valid() {
		return NewSpecErrorf("unknown node status: %q", *u.Status)
	}
	if u.Budget != nil && *u.Budget < 0 {
		return NewSpecError("campaign budget cannot be negative")
	}
	return nil
}

// applyTo merges the set fields into the node. Version and UpdatedAt
// bookkeeping belongs to the store, not the patch.
func (u NodeUpdate) applyTo(n *Node) {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Description != nil {
		n.Description = *u.Description
	}
	if u.Status != nil {
		n.Status = *u.Status
	}
	if u.ScheduledAt != nil {
		n.ScheduledAt = cloneTime(u.ScheduledAt)
	}
	if u.Caption != nil {
		n.Caption = *u.Caption
	}
	if u.Hashtags != nil {
		n.Hashtags = cloneStrings(u.Hashtags)
	}
	if u.Budget != nil {
		n.Budget = *u.Budget
	}
	if u.Goals != nil {
		n.Goals = cloneStrings(u.Goals)
	}
	if u.TargetAudience != nil {
		n.TargetAudience = *u.TargetAudience
	}
	if u.DueDate != nil {
		n.DueDate = cloneTime(u.DueDate)
	}
	if u.Metadata != nil {
		n.Metadata = cloneMetadata(u.Metadata)
	}
}

// buildNode materializes a validated spec into a stored node shape. The
// caller owns id allocation and timestamps.
func (s NodeSpec) buildNode(id types.ID, now time.Time) *Node {
	n := &Node{
		ID:          id,
		Type:        s.Type,
		Title:       s.Title,
		Description: s.Description,
		Status:      NodeStatusPending,
		Version:     1,
		Metadata:    cloneMetadata(s.Metadata),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	switch s.Type {
	case NodeTypeContent:
		c := s.Content
		n.BlueprintID = c.BlueprintID
		n.Platform = c.Platform
		n.ScheduledAt = cloneTime(c.ScheduledAt)
		n.Caption = c.Caption
		n.Hashtags = cloneStrings(c.Hashtags)
		n.OfferID = c.OfferID
		n.SeriesID = c.SeriesID
		n.SeriesIndex = c.SeriesIndex
	case NodeTypeCampaign:
		c := s.Campaign
		n.StartDate = cloneTime(c.StartDate)
		n.EndDate = cloneTime(c.EndDate)
		n.Budget = c.Budget
		n.Goals = cloneStrings(c.Goals)
		n.TargetAudience = c.TargetAudience
	case NodeTypeSeries:
		c := s.Series
		n.BlueprintID = c.BlueprintID
		n.Platforms = cloneStrings(c.Platforms)
		recurrence := c.Recurrence.clone()
		n.Recurrence = &recurrence
		start, end := c.StartDate, c.EndDate
		n.StartDate = &start
		n.EndDate = &end
		n.CaptionTemplate = c.CaptionTemplate
		n.HashtagTemplates = cloneStrings(c.HashtagTemplates)
	case NodeTypeMilestone:
		c := s.Milestone
		due := c.DueDate
		n.DueDate = &due
		n.Approvers = cloneStrings(c.Approvers)
		n.RequireAllApprovers = c.RequireAllApprovers
		n.AutoApproveAfterHours = c.AutoApproveAfterHours
	}

	return n
}
