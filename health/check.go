package health

import "context"

// Check is the contract every probe implements.
//
// Contract:
// - Concurrency: Run may be called concurrently from overlapping runs.
// - Context: Run should honor cancellation, but callers must not rely on it;
//   a run over budget may leave Run executing in the background.
// - Errors: a returned error (or a panic) is treated as a probe fault and
//   recovered by the caller into an Unknown node. Well-behaved probes report
//   failures through the node status instead.
type Check interface {
	// ID returns the stable identifier used for caching and reporting.
	ID() string

	// Name returns the human label.
	Name() string

	// Run performs the probe.
	Run(ctx context.Context) (StatusNode, error)
}

// CheckFunc is an adapter to allow ordinary functions to be used as Checks.
type CheckFunc struct {
	id   string
	name string
	fn   func(context.Context) (StatusNode, error)
}

// NewCheck creates a Check from a function.
func NewCheck(id, name string, fn func(context.Context) (StatusNode, error)) *CheckFunc {
	return &CheckFunc{id: id, name: name, fn: fn}
}

// ID returns the check identifier.
func (f *CheckFunc) ID() string {
	return f.id
}

// Name returns the check name.
func (f *CheckFunc) Name() string {
	return f.name
}

// Run performs the check.
func (f *CheckFunc) Run(ctx context.Context) (StatusNode, error) {
	return f.fn(ctx)
}

var _ Check = (*CheckFunc)(nil)
