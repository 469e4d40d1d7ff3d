package runner

import (
	"fmt"
	"time"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/sanitize"
)

// DefaultBudget is the global time budget when Config.Budget is unset.
const DefaultBudget = 5 * time.Second

// BudgetExceededID is the id of the node that replaces all probes when a
// run exceeds its budget.
const BudgetExceededID = "budget_exceeded"

// Config describes one health check run.
type Config struct {
	// Checks are run concurrently; results keep this order.
	Checks []health.Check

	// Budget is the wall-clock ceiling for the whole run.
	// Default: 5s
	Budget time.Duration

	// CacheTTL enables per-check result caching when positive.
	CacheTTL time.Duration

	// Precedence orders statuses for aggregation.
	// Default: health.DefaultPrecedence()
	Precedence []health.Status

	// Auth configures the gate. Nil uses environment defaults.
	Auth *auth.Config

	// Sanitize selects the report transform.
	// Default: sanitize.None
	Sanitize sanitize.Strategy

	// CancelOnBudget cancels in-flight probes when the budget fires.
	CancelOnBudget bool
}

// withDefaults returns a copy of c with defaults applied.
func (c Config) withDefaults() Config {
	if c.Budget <= 0 {
		c.Budget = DefaultBudget
	}
	if len(c.Precedence) == 0 {
		c.Precedence = health.DefaultPrecedence()
	}
	if c.Sanitize == "" {
		c.Sanitize = sanitize.None
	}
	return c
}

// Validate reports structural problems: nil checks, empty or duplicate
// ids, and invalid precedence statuses.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Checks))
	for i, check := range c.Checks {
		if check == nil {
			return fmt.Errorf("%w: check %d is nil", ErrInvalidConfig, i)
		}
		id := check.ID()
		if id == "" {
			return fmt.Errorf("%w: check %d has empty id", ErrInvalidConfig, i)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate check id %q", ErrInvalidConfig, id)
		}
		seen[id] = true
	}
	for _, s := range c.Precedence {
		if !s.Valid() {
			return fmt.Errorf("%w: precedence status %q", ErrInvalidConfig, s)
		}
	}
	return nil
}
