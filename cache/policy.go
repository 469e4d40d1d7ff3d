package cache

import "time"

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled by default.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy: caching disabled, TTLs
// clamped to 10 minutes when enabled per run.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 0,
		MaxTTL:     10 * time.Minute,
	}
}

// ShouldCache returns true if an override (or the default) yields a
// positive TTL.
func (p Policy) ShouldCache(override time.Duration) bool {
	return p.EffectiveTTL(override) > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
