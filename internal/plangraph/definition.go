package plangraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/planloom/planloom/internal/types"
)

// tracerName identifies spans emitted while building plans from
// definitions.
const tracerName = "github.com/planloom/planloom/internal/plangraph"

// PlanDefinition is the YAML authoring format for a plan. Nodes carry
// definition-local ref keys so edges can name their endpoints before
// ids exist; refs are never persisted.
//
//	plan:
//	  name: Q1 launch
//	  client_id: acme
//	  start_date: 2025-01-01
//	  end_date: 2025-03-31
//	nodes:
//	  - ref: teaser
//	    type: content
//	    title: Launch teaser
//	    spec:
//	      blueprint_id: bp_hook_v2
//	      platform: instagram
//	      scheduled_at: 2025-01-10
//	edges:
//	  - from: teaser
//	    to: announcement
//	    type: depends_on
type PlanDefinition struct {
	Plan  PlanHeader       `yaml:"plan"`
	Nodes []NodeDefinition `yaml:"nodes"`
	Edges []EdgeDefinition `yaml:"edges"`
}

// PlanHeader carries the plan-level fields of a definition.
type PlanHeader struct {
	Name        string     `yaml:"name"`
	ClientID    string     `yaml:"client_id"`
	Description string     `yaml:"description"`
	StartDate   *time.Time `yaml:"start_date"`
	EndDate     *time.Time `yaml:"end_date"`
}

// NodeDefinition declares one node. Spec holds the variant fields and
// is decoded according to Type. Campaign definitions may list contained
// node refs in Contains, which materializes part_of edges from each
// child to the campaign.
type NodeDefinition struct {
	Ref         string         `yaml:"ref"`
	Type        NodeType       `yaml:"type"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Metadata    map[string]any `yaml:"metadata"`
	Spec        map[string]any `yaml:"spec"`
	Contains    []string       `yaml:"contains"`
}

// EdgeDefinition declares one edge between node refs.
type EdgeDefinition struct {
	From     string         `yaml:"from"`
	To       string         `yaml:"to"`
	Type     EdgeType       `yaml:"type"`
	Metadata map[string]any `yaml:"metadata"`
}

// DefinitionError reports a problem in a plan definition, carrying the
// node ref it concerns when one applies.
type DefinitionError struct {
	Ref     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	msg := e.Message
	if e.Ref != "" {
		msg = fmt.Sprintf("node %q: %s", e.Ref, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("plan definition: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("plan definition: %s", msg)
}

// Unwrap returns the underlying cause.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// ParseDefinition parses and structurally validates a YAML plan
// definition. Unknown fields are rejected so typos surface instead of
// silently dropping configuration.
func ParseDefinition(data []byte) (*PlanDefinition, error) {
	var def PlanDefinition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DefinitionError{Message: "definition is empty"}
		}
		return nil, &DefinitionError{Message: "invalid YAML", Cause: err}
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition's structure: required header fields,
// unique refs, known types, and resolvable edge endpoints. Field-level
// constraints are left to the engine, which re-validates during build.
func (d *PlanDefinition) Validate() error {
	if d.Plan.Name == "" {
		return &DefinitionError{Message: "plan.name is required"}
	}
	if d.Plan.ClientID == "" {
		return &DefinitionError{Message: "plan.client_id is required"}
	}

	refs := make(map[string]*NodeDefinition, len(d.Nodes))
	for i := range d.Nodes {
		node := &d.Nodes[i]
		if node.Ref == "" {
			return &DefinitionError{Message: fmt.Sprintf("node %d has no ref", i)}
		}
		if _, exists := refs[node.Ref]; exists {
			return &DefinitionError{Ref: node.Ref, Message: "duplicate ref"}
		}
		if !node.Type.Valid() {
			return &DefinitionError{Ref: node.Ref, Message: fmt.Sprintf("unknown node type: %q", node.Type)}
		}
		if len(node.Contains) > 0 && node.Type != NodeTypeCampaign {
			return &DefinitionError{Ref: node.Ref, Message: "contains is only valid on campaign nodes"}
		}
		refs[node.Ref] = node
	}

	for i := range d.Nodes {
		node := &d.Nodes[i]
		for _, child := range node.Contains {
			if child == node.Ref {
				return &DefinitionError{Ref: node.Ref, Message: "campaign cannot contain itself"}
			}
			if _, ok := refs[child]; !ok {
				return &DefinitionError{Ref: node.Ref, Message: fmt.Sprintf("contains references unknown ref %q", child)}
			}
		}
	}

	for i, edge := range d.Edges {
		if !edge.Type.Valid() {
			return &DefinitionError{Message: fmt.Sprintf("edge %d has unknown type %q", i, edge.Type)}
		}
		if _, ok := refs[edge.From]; !ok {
			return &DefinitionError{Message: fmt.Sprintf("edge %d references unknown ref %q", i, edge.From)}
		}
		if _, ok := refs[edge.To]; !ok {
			return &DefinitionError{Message: fmt.Sprintf("edge %d references unknown ref %q", i, edge.To)}
		}
	}

	return nil
}

// BuildOptions controls how a definition is materialized into a plan.
type BuildOptions struct {
	// ExpandSeries inserts the concrete content nodes of every series
	// after the declared graph is built.
	ExpandSeries bool

	// PlanOptions are passed through to the plan constructor.
	PlanOptions []Option
}

// BuildResult pairs the built plan with the mapping from
// definition-local refs to the node ids the engine allocated.
type BuildResult struct {
	Plan     *Plan
	NodeRefs map[string]types.ID
}

// BuildPlan materializes a definition through the engine's validating
// operations, so every invariant (window, limits, acyclicity) applies
// exactly as it would for direct API calls.
func BuildPlan(ctx context.Context, def *PlanDefinition, opts BuildOptions) (*BuildResult, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "plangraph.build",
		trace.WithAttributes(
			attribute.Int("plan.definition.nodes", len(def.Nodes)),
			attribute.Int("plan.definition.edges", len(def.Edges)),
		))
	defer span.End()

	result, err := buildPlan(def, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan build failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("plan.id", result.Plan.ID().String()),
		attribute.Int("plan.nodes", result.Plan.NodeCount()),
		attribute.Int("plan.edges", result.Plan.EdgeCount()),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func buildPlan(def *PlanDefinition, opts BuildOptions) (*BuildResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	plan, err := New(PlanConfig{
		ClientID:    def.Plan.ClientID,
		Name:        def.Plan.Name,
		Description: def.Plan.Description,
		StartDate:   def.Plan.StartDate,
		EndDate:     def.Plan.EndDate,
	}, opts.PlanOptions...)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]types.ID, len(def.Nodes))
	for i := range def.Nodes {
		nodeDef := &def.Nodes[i]
		spec, err := nodeDef.buildSpec()
		if err != nil {
			return nil, err
		}
		node, err := plan.AddNode(spec)
		if err != nil {
			return nil, &DefinitionError{Ref: nodeDef.Ref, Message: "node rejected", Cause: err}
		}
		refs[nodeDef.Ref] = node.ID
	}

	for i := range def.Nodes {
		nodeDef := &def.Nodes[i]
		for _, child := range nodeDef.Contains {
			_, err := plan.AddEdge(EdgeSpec{
				SourceID: refs[child],
				TargetID: refs[nodeDef.Ref],
				Type:     EdgeTypePartOf,
			})
			if err != nil {
				return nil, &DefinitionError{Ref: nodeDef.Ref, Message: fmt.Sprintf("contains %q rejected", child), Cause: err}
			}
		}
	}

	for i, edgeDef := range def.Edges {
		_, err := plan.AddEdge(EdgeSpec{
			SourceID: refs[edgeDef.From],
			TargetID: refs[edgeDef.To],
			Type:     edgeDef.Type,
			Metadata: edgeDef.Metadata,
		})
		if err != nil {
			return nil, &DefinitionError{
				Message: fmt.Sprintf("edge %d (%s -> %s) rejected", i, edgeDef.From, edgeDef.To),
				Cause:   err,
			}
		}
	}

	if opts.ExpandSeries {
		for i := range def.Nodes {
			nodeDef := &def.Nodes[i]
			if nodeDef.Type != NodeTypeSeries {
				continue
			}
			if _, err := plan.ExpandSeriesInto(refs[nodeDef.Ref]); err != nil {
				return nil, &DefinitionError{Ref: nodeDef.Ref, Message: "series expansion failed", Cause: err}
			}
		}
	}

	return &BuildResult{Plan: plan, NodeRefs: refs}, nil
}

// LoadPlan reads, parses, and builds a plan definition file.
func LoadPlan(ctx context.Context, path string, opts BuildOptions) (*BuildResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan definition: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, err
	}
	return BuildPlan(ctx, def, opts)
}

// buildSpec decodes the definition's spec block into the typed variant
// for the declared node type.
func (d *NodeDefinition) buildSpec() (NodeSpec, error) {
	spec := NodeSpec{
		Type:        d.Type,
		Title:       d.Title,
		Description: d.Description,
		Metadata:    d.Metadata,
	}

	var target any
	switch d.Type {
	case NodeTypeContent:
		spec.Content = &ContentSpec{}
		target = spec.Content
	case NodeTypeCampaign:
		spec.Campaign = &CampaignSpec{}
		target = spec.Campaign
	case NodeTypeSeries:
		spec.Series = &SeriesSpec{}
		target = spec.Series
	case NodeTypeMilestone:
		spec.Milestone = &MilestoneSpec{}
		target = spec.Milestone
	default:
		return NodeSpec{}, &DefinitionError{Ref: d.Ref, Message: fmt.Sprintf("unknown node type: %q", d.Type)}
	}

	if err := decodeSpec(d.Spec, target); err != nil {
		return NodeSpec{}, &DefinitionError{Ref: d.Ref, Message: "invalid spec block", Cause: err}
	}
	return spec, nil
}

// decodeSpec decodes a raw spec block into a typed spec struct.
// Unknown keys are rejected; date and weekday scalars given as strings
// are converted.
func decodeSpec(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			flexibleTimeHook,
			weekdayHook,
		),
	})
	if err != nil {
		return err
	}
	if input == nil {
		input = map[string]any{}
	}
	return decoder.Decode(input)
}

// definitionTimeLayouts are the accepted textual date formats, tried in
// order.
var definitionTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// flexibleTimeHook converts string scalars into time.Time fields. YAML
// date scalars usually arrive as time.Time already; this hook covers
// quoted values.
func flexibleTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	value := data.(string)
	for _, layout := range definitionTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, want RFC 3339 or YYYY-MM-DD", value)
}

// weekdayHook converts weekday name scalars into time.Weekday fields.
func weekdayHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Weekday(0)) {
		return data, nil
	}
	return parseWeekday(data.(string))
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseWeekday resolves a case-insensitive weekday name.
func parseWeekday(value string) (time.Weekday, error) {
	if day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(value))]; ok {
		return day, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday: %q", value)
}
