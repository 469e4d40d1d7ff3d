package health

import (
	"context"
	"time"
)

var defaultPrecedence = []Status{StatusDown, StatusPartial, StatusUnknown, StatusUp}

// DefaultPrecedence returns the default aggregation order:
// Down > Partial > Unknown > Up.
func DefaultPrecedence() []Status {
	out := make([]Status, len(defaultPrecedence))
	copy(out, defaultPrecedence)
	return out
}

// AggregateStatus reduces nodes to a single status.
//
// The first status in precedence that any node carries wins. With no
// precedence the default order is used. An empty node list is Unknown. When
// the precedence list matches none of the nodes, all-Up nodes yield Up and
// anything else falls back to Partial.
func AggregateStatus(nodes []StatusNode, precedence ...Status) Status {
	if len(nodes) == 0 {
		return StatusUnknown
	}
	if len(precedence) == 0 {
		precedence = defaultPrecedence
	}

	present := make(map[Status]bool, 4)
	for _, n := range nodes {
		present[n.Status] = true
	}

	for _, s := range precedence {
		if present[s] {
			return s
		}
	}

	if len(present) == 1 && present[StatusUp] {
		return StatusUp
	}
	return StatusPartial
}

// StatusMessage returns the fixed human-readable summary for a status,
// prefixed with "<prefix>: " when prefix is non-empty.
func StatusMessage(status Status, prefix string) string {
	var msg string
	switch status {
	case StatusUp:
		msg = "All systems operational"
	case StatusPartial:
		msg = "Some services degraded"
	case StatusDown:
		msg = "Critical services unavailable"
	case StatusUnknown:
		msg = "Unable to determine status"
	default:
		msg = "Status unknown"
	}
	if prefix != "" {
		return prefix + ": " + msg
	}
	return msg
}

// Group builds a group node whose status and message are aggregated from
// its children.
func Group(id, name string, children []StatusNode, metadata map[string]any) StatusNode {
	status := AggregateStatus(children)
	return NewStatusNode(id, name, status, StatusMessage(status, name), children, metadata)
}

// MeasureTime runs fn and reports its wall-clock duration in milliseconds.
func MeasureTime[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, int64, error) {
	start := time.Now()
	result, err := fn(ctx)
	return result, time.Since(start).Milliseconds(), err
}
