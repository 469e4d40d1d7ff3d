package health

import (
	"fmt"
	"strings"
)

// Status is the health status of a node or of a whole report.
type Status string

const (
	// StatusUp indicates the component is functioning normally.
	StatusUp Status = "Up"
	// StatusDown indicates the component is not functioning.
	StatusDown Status = "Down"
	// StatusPartial indicates the component is functioning with issues.
	StatusPartial Status = "Partial"
	// StatusUnknown indicates the status could not be determined.
	StatusUnknown Status = "Unknown"
)

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUp, StatusDown, StatusPartial, StatusUnknown:
		return true
	default:
		return false
	}
}

// Failed reports whether the status counts as a failed check.
func (s Status) Failed() bool {
	return s == StatusDown || s == StatusUnknown
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return StatusUp, nil
	case "down":
		return StatusDown, nil
	case "partial":
		return StatusPartial, nil
	case "unknown":
		return StatusUnknown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// ParsePrecedence parses an ordered list of status names.
func ParsePrecedence(names []string) ([]Status, error) {
	out := make([]Status, 0, len(names))
	for _, n := range names {
		s, err := ParseStatus(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
