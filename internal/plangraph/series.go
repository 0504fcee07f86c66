package plangraph

import (
	"fmt"
	"time"

	"github.com/planloom/planloom/internal/types"
)

// Frequency defines how often a series recurs.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// String returns the string representation of the frequency.
func (f Frequency) String() string {
	return string(f)
}

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// Recurrence defines the repeat rule of a series.
type Recurrence struct {
	Frequency Frequency `json:"frequency" yaml:"frequency" mapstructure:"frequency"`

	// DayOfWeek picks the weekday for weekly recurrence.
	DayOfWeek *time.Weekday `json:"dayOfWeek,omitempty" yaml:"dayOfWeek,omitempty" mapstructure:"day_of_week"`

	// DayOfMonth picks the day for monthly recurrence, 1 to 31. Days
	// past the end of a month roll into the next one following Go time
	// normalization.
	DayOfMonth *int `json:"dayOfMonth,omitempty" yaml:"dayOfMonth,omitempty" mapstructure:"day_of_month"`

	// Time is the HH:MM clock applied to every occurrence.
	// Default 12:00.
	Time string `json:"time,omitempty" yaml:"time,omitempty" mapstructure:"time"`

	// Timezone is carried for downstream consumers. Expansion applies
	// Time as a fixed clock and does not resolve zones.
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty" mapstructure:"timezone"`
}

// Validate checks the recurrence rule.
func (r Recurrence) Validate() error {
	if !r.Frequency.Valid() {
		return NewSpecErrorf("unknown recurrence frequency: %q", r.Frequency)
	}
	if r.Frequency == FrequencyWeekly && r.DayOfWeek == nil {
		return NewSpecError("weekly recurrence requires day_of_week")
	}
	if r.Frequency == FrequencyMonthly {
		if r.DayOfMonth == nil {
			return NewSpecError("monthly recurrence requires day_of_month")
		}
		if *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return NewSpecErrorf("day_of_month %d is out of range 1..31", *r.DayOfMonth)
		}
	}
	if r.Time != "" {
		if _, _, err := parseClockTime(r.Time); err != nil {
			return err
		}
	}
	return nil
}

// clone returns a deep copy of the recurrence.
func (r Recurrence) clone() Recurrence {
	c := r
	if r.DayOfWeek != nil {
		d := *r.DayOfWeek
		c.DayOfWeek = &d
	}
	if r.DayOfMonth != nil {
		d := *r.DayOfMonth
		c.DayOfMonth = &d
	}
	return c
}

// SeriesDefaults carries the expansion settings a plan applies when a
// series leaves them unset.
type SeriesDefaults struct {
	// DefaultTime is the HH:MM clock used when a recurrence has no Time.
	DefaultTime string

	// MaxOccurrences bounds how many occurrence dates one expansion may
	// produce. Zero disables the bound.
	MaxOccurrences int
}

// DefaultSeriesDefaults returns the built-in expansion settings.
func DefaultSeriesDefaults() SeriesDefaults {
	return SeriesDefaults{
		DefaultTime:    "12:00",
		MaxOccurrences: 366,
	}
}

// ExpandSeries expands the series node with the given id into detached
// content node specs using the plan's expansion defaults. The specs are
// not validated against the plan window; AddNode re-enforces that
// invariant on insert.
func (p *Plan) ExpandSeries(id types.ID) ([]NodeSpec, error) {
	node, ok := p.nodes[id]
	if !ok {
		return nil, NewNodeNotFoundError(id)
	}
	return ExpandSeriesNode(node, p.seriesDefaults)
}

// ExpandSeriesInto expands the series node and inserts every produced
// content node into the plan. All produced specs are validated against
// the plan window and limit table before any insert, so a failing
// occurrence leaves the plan untouched. Returns copies of the created
// nodes.
func (p *Plan) ExpandSeriesInto(id types.ID) ([]*Node, error) {
	specs, err := p.ExpandSeries(id)
	if err != nil {
		return nil, err
	}

	for _, spec := range specs {
		if err := spec.Validate(p.limits); err != nil {
			return nil, err
		}
		if spec.Content.ScheduledAt != nil && !p.withinWindow(*spec.Content.ScheduledAt) {
			return nil, NewDateRangeError(*spec.Content.ScheduledAt, p.startDate, p.endDate)
		}
	}

	created := make([]*Node, 0, len(specs))
	for _, spec := range specs {
		node, err := p.AddNode(spec)
		if err != nil {
			return created, err
		}
		created = append(created, node)
	}

	p.logger.Debug("series expanded",
		"plan_id", p.id,
		"series_id", id,
		"created_nodes", len(created),
	)
	return created, nil
}

// ExpandSeriesNode expands a series node into detached content node
// specs, one per occurrence date per platform. Occurrence indexes are
// 1-based, increment once per date, and are shared across platforms.
// Titles follow "<series title> #<index>". Each spec back-references
// the series through SeriesID and SeriesIndex.
func ExpandSeriesNode(series *Node, defaults SeriesDefaults) ([]NodeSpec, error) {
	if series == nil {
		return nil, NewSpecError("series node is nil")
	}
	if series.Type != NodeTypeSeries {
		return nil, NewSpecErrorf("node %s is not a series", series.ID)
	}
	if series.Recurrence == nil {
		return nil, NewSpecError("series node has no recurrence rule")
	}
	if series.StartDate == nil || series.EndDate == nil {
		return nil, NewSpecError("series node has no date window")
	}
	if len(series.Platforms) == 0 {
		return nil, NewSpecError("series node has no platforms")
	}
	if err := series.Recurrence.Validate(); err != nil {
		return nil, err
	}

	clock := series.Recurrence.Time
	if clock == "" {
		clock = defaults.DefaultTime
	}
	if clock == "" {
		clock = "12:00"
	}
	hour, minute, err := parseClockTime(clock)
	if err != nil {
		return nil, err
	}

	dates, err := occurrenceDates(*series.StartDate, *series.EndDate,
		*series.Recurrence, defaults.MaxOccurrences)
	if err != nil {
		return nil, err
	}

	specs := make([]NodeSpec, 0, len(dates)*len(series.Platforms))
	for i, date := range dates {
		index := i + 1
		scheduledAt := time.Date(date.Year(), date.Month(), date.Day(),
			hour, minute, 0, 0, time.UTC)

		for _, platform := range series.Platforms {
			at := scheduledAt
			specs = append(specs, NodeSpec{
				Type:  NodeTypeContent,
				Title: fmt.Sprintf("%s #%d", series.Title, index),
				Content: &ContentSpec{
					BlueprintID: series.BlueprintID,
					Platform:    platform,
					ScheduledAt: &at,
					Caption:     series.CaptionTemplate,
					Hashtags:    cloneStrings(series.HashtagTemplates),
					SeriesID:    series.ID,
					SeriesIndex: index,
				},
			})
		}
	}

	return specs, nil
}

// occurrenceDates computes the calendar dates of a recurrence between
// startDate and endDate inclusive, each at start of day UTC.
//
// The anchor is the start date snapped forward: weekly recurrence snaps
// to the next DayOfWeek on or after the start, monthly snaps to
// DayOfMonth on or after the start, daily and biweekly use the start
// date unchanged. Monthly occurrences are computed from the anchor
// month per ordinal, so a 31st in a short month rolls forward without
// drifting later occurrences.
func occurrenceDates(startDate, endDate time.Time, r Recurrence, maxOccurrences int) ([]time.Time, error) {
	startDay := startOfDay(startDate)
	endDay := startOfDay(endDate)

	var dates []time.Time
	appendDate := func(d time.Time) error {
		dates = append(dates, d)
		if maxOccurrences > 0 && len(dates) > maxOccurrences {
			return NewSpecErrorf("series expansion exceeds %d occurrences", maxOccurrences)
		}
		return nil
	}

	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly:
		anchor := startDay
		stepDays := 1
		switch r.Frequency {
		case FrequencyWeekly:
			anchor = snapToWeekday(startDay, *r.DayOfWeek)
			stepDays = 7
		case FrequencyBiweekly:
			stepDays = 14
		}
		for current := anchor; !current.After(endDay); current = current.AddDate(0, 0, stepDays) {
			if err := appendDate(current); err != nil {
				return nil, err
			}
		}

	case FrequencyMonthly:
		day := *r.DayOfMonth
		baseYear, baseMonth := startDay.Year(), startDay.Month()
		if day < startDay.Day() {
			baseMonth++
		}
		for k := 0; ; k++ {
			current := time.Date(baseYear, baseMonth+time.Month(k), day, 0, 0, 0, 0, time.UTC)
			if current.After(endDay) {
				break
			}
			if err := appendDate(current); err != nil {
				return nil, err
			}
		}

	default:
		return nil, NewSpecErrorf("unknown recurrence frequency: %q", r.Frequency)
	}

	return dates, nil
}

// startOfDay truncates a timestamp to midnight UTC on its calendar
// date.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// snapToWeekday moves d forward to the next occurrence of weekday,
// keeping d itself when it already falls on that weekday.
func snapToWeekday(d time.Time, weekday time.Weekday) time.Time {
	delta := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, delta)
}

// parseClockTime parses an HH:MM clock value.
func parseClockTime(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, NewSpecErrorf("invalid recurrence time %q, want HH:MM", value)
	}
	return t.Hour(), t.Minute(), nil
}
