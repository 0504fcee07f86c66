package plangraph

import (
	"log/slog"
	"time"

	"github.com/planloom/planloom/internal/events"
	"github.com/planloom/planloom/internal/types"
)

// Plan is the aggregate root of one content plan graph. It exclusively
// owns its nodes and edges; every accessor hands out copies so callers
// cannot alias internal storage.
//
// A Plan has no internal locking. See the package documentation for the
// concurrency contract.
type Plan struct {
	id          types.ID
	clientID    string
	name        string
	description string
	startDate   *time.Time
	endDate     *time.Time
	status      PlanStatus
	version     int

	approvedBy      string
	approvedAt      *time.Time
	approvalComment string
	rejectedBy      string
	rejectedAt      *time.Time
	rejectionReason string

	createdAt time.Time
	updatedAt time.Time

	nodes map[types.ID]*Node
	edges map[types.ID]*Edge

	limits         LimitTable
	seriesDefaults SeriesDefaults
	logger         *slog.Logger
	sink           events.Sink
}

// PlanConfig carries the constructor inputs for a new plan.
type PlanConfig struct {
	// ClientID scopes the plan to one owning client. Required.
	ClientID string

	// Name is the human-facing plan name. Required.
	Name string

	// Description is optional free text.
	Description string

	// StartDate and EndDate bound the scheduling window. Either end may
	// be left open; when both are set, StartDate must not be after
	// EndDate. Content nodes with a scheduled time must fall inside the
	// window.
	StartDate *time.Time
	EndDate   *time.Time
}

// Option configures a plan at construction time.
type Option func(*Plan)

// WithLogger sets the structured logger for engine diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plan) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEventSink sets the sink that receives mutation events.
// Default: events.NoopSink.
func WithEventSink(sink events.Sink) Option {
	return func(p *Plan) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithLimits overrides or extends the built-in per-platform limit table.
func WithLimits(overrides map[string]PlatformLimit) Option {
	return func(p *Plan) {
		p.limits = p.limits.WithOverrides(overrides)
	}
}

// WithSeriesDefaults overrides the series expansion defaults.
func WithSeriesDefaults(defaults SeriesDefaults) Option {
	return func(p *Plan) {
		if defaults.DefaultTime != "" {
			p.seriesDefaults.DefaultTime = defaults.DefaultTime
		}
		if defaults.MaxOccurrences > 0 {
			p.seriesDefaults.MaxOccurrences = defaults.MaxOccurrences
		}
	}
}

// New creates an empty plan in draft status at version 1.
func New(cfg PlanConfig, opts ...Option) (*Plan, error) {
	if cfg.ClientID == "" {
		return nil, NewSpecError("plan client id is required")
	}
	if cfg.Name == "" {
		return nil, NewSpecError("plan name is required")
	}
	if cfg.StartDate != nil && cfg.EndDate != nil && cfg.EndDate.Before(*cfg.StartDate) {
		return nil, NewSpecError("plan end date is before start date")
	}

	now := time.Now().UTC()
	p := &Plan{
		id:          types.NewPlanID(),
		clientID:    cfg.ClientID,
		name:        cfg.Name,
		description: cfg.Description,
		startDate:   cloneTime(cfg.StartDate),
		endDate:     cloneTime(cfg.EndDate),
		status:      PlanStatusDraft,
		version:     1,
		createdAt:   now,
		updatedAt:   now,

		nodes: make(map[types.ID]*Node),
		edges: make(map[types.ID]*Edge),

		limits:         DefaultLimits(),
		seriesDefaults: DefaultSeriesDefaults(),
		logger:         slog.Default(),
		sink:           events.NoopSink{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// ID returns the plan identifier.
func (p *Plan) ID() types.ID {
	return p.id
}

// ClientID returns the owning client identifier.
func (p *Plan) ClientID() string {
	return p.clientID
}

// Name returns the plan name.
func (p *Plan) Name() string {
	return p.name
}

// Description returns the plan description.
func (p *Plan) Description() string {
	return p.description
}

// StartDate returns a copy of the scheduling window start, or nil when
// the window is open at the start.
func (p *Plan) StartDate() *time.Time {
	return cloneTime(p.startDate)
}

// EndDate returns a copy of the scheduling window end, or nil when the
// window is open at the end.
func (p *Plan) EndDate() *time.Time {
	return cloneTime(p.endDate)
}

// Status returns the current lifecycle status.
func (p *Plan) Status() PlanStatus {
	return p.status
}

// Version returns the plan version. It starts at 1 and increments only
// on accepted status transitions.
func (p *Plan) Version() int {
	return p.version
}

// ApprovedBy returns the approving user id, or "" when not approved.
func (p *Plan) ApprovedBy() string {
	return p.approvedBy
}

// ApprovedAt returns a copy of the approval timestamp, or nil.
func (p *Plan) ApprovedAt() *time.Time {
	return cloneTime(p.approvedAt)
}

// ApprovalComment returns the optional comment recorded on approval.
func (p *Plan) ApprovalComment() string {
	return p.approvalComment
}

// RejectedBy returns the rejecting user id, or "" when not rejected.
func (p *Plan) RejectedBy() string {
	return p.rejectedBy
}

// RejectedAt returns a copy of the rejection timestamp, or nil.
func (p *Plan) RejectedAt() *time.Time {
	return cloneTime(p.rejectedAt)
}

// RejectionReason returns the reason recorded on rejection.
func (p *Plan) RejectionReason() string {
	return p.rejectionReason
}

// CreatedAt returns the creation timestamp.
func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns the last update timestamp.
func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

// withinWindow reports whether t falls inside the plan's scheduling
// window. Open bounds admit everything on their side; both bounds are
// inclusive.
func (p *Plan) withinWindow(t time.Time) bool {
	if p.startDate != nil && t.Before(*p.startDate) {
		return false
	}
	if p.endDate != nil && t.After(*p.endDate) {
		return false
	}
	return true
}
