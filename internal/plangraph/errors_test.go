package plangraph

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planloom/planloom/internal/types"
)

// TestGraphError_Error tests the error string format
func TestGraphError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewGraphError(ErrCodeInvalidSpec, "something is off")
		assert.Equal(t, "[invalid_spec] something is off", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("underlying failure")
		err := WrapGraphError(ErrCodeSnapshotInvalid, "import failed", cause)
		assert.Equal(t, "[snapshot_invalid] import failed: underlying failure", err.Error())
		assert.Equal(t, cause, errors.Unwrap(err))
	})
}

// TestGraphError_Is tests that errors.Is matches on the error code
func TestGraphError_Is(t *testing.T) {
	nodeID := types.NewNodeID()
	err := fmt.Errorf("lookup: %w", NewNodeNotFoundError(nodeID))

	assert.True(t, errors.Is(err, NewGraphError(ErrCodeNodeNotFound, "")))
	assert.False(t, errors.Is(err, NewGraphError(ErrCodeCycleDetected, "")))

	var graphErr *GraphError
	require.True(t, errors.As(err, &graphErr))
	assert.Equal(t, ErrCodeNodeNotFound, graphErr.Code)
	assert.Equal(t, nodeID, graphErr.NodeID)
}

// TestNewDateRangeError tests the window formatting in date range errors
func TestNewDateRangeError(t *testing.T) {
	scheduledAt := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	start := dateUTC(2025, time.January, 1)
	end := dateUTC(2025, time.March, 31)

	tests := []struct {
		name      string
		startDate *time.Time
		endDate   *time.Time
		contains  []string
	}{
		{
			name:      "both bounds",
			startDate: &start,
			endDate:   &end,
			contains:  []string{"outside plan date range", "2025-01-01", "2025-03-31"},
		},
		{
			name:     "open start",
			endDate:  &end,
			contains: []string{"outside plan date range", "...", "2025-03-31"},
		},
		{
			name:      "open end",
			startDate: &start,
			contains:  []string{"outside plan date range", "2025-01-01", "..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDateRangeError(scheduledAt, tt.startDate, tt.endDate)
			assert.Equal(t, ErrCodeDateRange, err.Code)
			for _, fragment := range tt.contains {
				assert.Contains(t, err.Error(), fragment)
			}
		})
	}
}

// TestErrorPredicates tests the Is* helper functions
func TestErrorPredicates(t *testing.T) {
	nodeID := types.NewNodeID()

	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{
			name:      "node not found matches",
			err:       NewNodeNotFoundError(nodeID),
			predicate: IsNodeNotFound,
			expected:  true,
		},
		{
			name:      "wrapped node not found matches",
			err:       fmt.Errorf("get: %w", NewNodeNotFoundError(nodeID)),
			predicate: IsNodeNotFound,
			expected:  true,
		},
		{
			name:      "cycle error matches",
			err:       NewCycleError(types.NewNodeID(), types.NewNodeID()),
			predicate: IsCycleError,
			expected:  true,
		},
		{
			name:      "invalid transition matches",
			err:       NewInvalidTransitionError(PlanStatusApproved, PlanStatusApproved),
			predicate: IsInvalidTransition,
			expected:  true,
		},
		{
			name:      "date range matches",
			err:       NewDateRangeError(time.Now(), nil, nil),
			predicate: IsDateRangeError,
			expected:  true,
		},
		{
			name:      "spec error matches",
			err:       NewSpecError("bad spec"),
			predicate: IsSpecError,
			expected:  true,
		},
		{
			name:      "wrong code does not match",
			err:       NewSpecError("bad spec"),
			predicate: IsCycleError,
			expected:  false,
		},
		{
			name:      "plain error does not match",
			err:       fmt.Errorf("boom"),
			predicate: IsNodeNotFound,
			expected:  false,
		},
		{
			name:      "nil does not match",
			err:       nil,
			predicate: IsNodeNotFound,
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.predicate(tt.err))
		})
	}
}

// TestErrorConstructors_CarryIDs tests that constructors attach the
// offending entity ids
func TestErrorConstructors_CarryIDs(t *testing.T) {
	nodeID := types.NewNodeID()
	edgeID := types.NewEdgeID()

	assert.Equal(t, nodeID, NewNodeNotFoundError(nodeID).NodeID)
	assert.Equal(t, edgeID, NewEdgeNotFoundError(edgeID).EdgeID)
	assert.Equal(t, nodeID, NewSourceNodeNotFoundError(nodeID).NodeID)
	assert.Equal(t, nodeID, NewTargetNodeNotFoundError(nodeID).NodeID)
	assert.Equal(t, nodeID, NewUnauthorizedApproverError(nodeID, "u1").NodeID)
	assert.Equal(t, nodeID, NewDuplicateApprovalError(nodeID, "u1").NodeID)
}
