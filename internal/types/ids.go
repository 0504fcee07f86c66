package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a typed identifier string of the form "<prefix>_<32 hex chars>".
// The prefix names the entity kind (plan, node, edge) and the suffix is an
// opaque random value, so IDs are safe to log, compare, and use as map keys.
type ID string

// Entity prefixes for generated identifiers.
const (
	PlanIDPrefix = "plan"
	NodeIDPrefix = "node"
	EdgeIDPrefix = "edge"
)

// suffixLen is the fixed length of the random portion of an ID:
// a UUIDv4 with the dashes stripped.
const suffixLen = 32

// NewPlanID generates a new random plan identifier.
func NewPlanID() ID {
	return newID(PlanIDPrefix)
}

// NewNodeID generates a new random node identifier.
func NewNodeID() ID {
	return newID(NodeIDPrefix)
}

// NewEdgeID generates a new random edge identifier.
func NewEdgeID() ID {
	return newID(EdgeIDPrefix)
}

// newID builds an identifier from the given prefix and a fresh UUIDv4.
// uuid.New() draws from crypto/rand and only panics on system-level
// entropy failure, so this never returns an error.
func newID(prefix string) ID {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return ID(prefix + "_" + suffix)
}

// ParseID parses and validates a string as a prefixed identifier.
// It returns an error if the string is empty, carries an unknown prefix,
// or has a malformed random suffix.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	id := ID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks that the ID has a known prefix and a well-formed
// fixed-length hex suffix. Returns an error describing the first problem
// found, or nil for a valid ID.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	prefix, suffix, ok := strings.Cut(string(id), "_")
	if !ok {
		return fmt.Errorf("ID %q is missing the prefix separator", string(id))
	}

	switch prefix {
	case PlanIDPrefix, NodeIDPrefix, EdgeIDPrefix:
	default:
		return fmt.Errorf("ID %q has unknown prefix %q", string(id), prefix)
	}

	if len(suffix) != suffixLen {
		return fmt.Errorf("ID %q suffix must be %d characters, got %d", string(id), suffixLen, len(suffix))
	}
	for _, r := range suffix {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return fmt.Errorf("ID %q suffix contains non-hex character %q", string(id), r)
		}
	}

	return nil
}

// Prefix returns the entity prefix of the ID ("plan", "node", "edge"),
// or an empty string if the ID is malformed.
func (id ID) Prefix() string {
	prefix, _, ok := strings.Cut(string(id), "_")
	if !ok {
		return ""
	}
	return prefix
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty or zero-valued.
func (id ID) IsZero() bool {
	return id == ""
}

// MarshalJSON implements the json.Marshaler interface.
// Zero IDs serialize as JSON null.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// It accepts null or an empty string as the zero ID and validates
// anything else.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal ID: %w", err)
	}

	if s == "" {
		*id = ""
		return nil
	}

	parsed, err := ParseID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
