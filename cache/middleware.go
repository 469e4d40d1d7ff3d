package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/watchtower/health"
)

// RunFunc executes a probe and returns its node.
type RunFunc func(ctx context.Context) (health.StatusNode, error)

// CheckCache wraps probe execution with result caching.
//
// Contract:
// - Concurrency: safe for concurrent use. Concurrent misses for the same
//   check id share one probe execution. The shared execution is cancelled
//   only once every caller waiting on it has gone; a caller whose ctx ends
//   returns ctx.Err() without affecting the others.
// - Errors: probe errors are returned as-is and never cached.
// - Ownership: every caller receives an independent copy of the node.
type CheckCache struct {
	cache  Cache
	policy Policy
	group  singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
	gen     uint64
}

// flight is one shared probe execution and the callers waiting on it.
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewCheckCache creates a check-result cache over c.
func NewCheckCache(c Cache, policy Policy) *CheckCache {
	return &CheckCache{cache: c, policy: policy, flights: make(map[string]*flight)}
}

// Cache returns the underlying store.
func (m *CheckCache) Cache() Cache {
	return m.cache
}

// Execute runs the probe with caching.
// On a hit the cached node is returned and run is not called; hit reports
// which path was taken. With a non-positive effective TTL run is always
// called and nothing is stored.
func (m *CheckCache) Execute(ctx context.Context, checkID string, ttl time.Duration, run RunFunc) (node health.StatusNode, hit bool, err error) {
	if m != nil {
		ttl = m.policy.EffectiveTTL(ttl)
	}
	if m == nil || m.cache == nil || ttl <= 0 {
		node, err = run(ctx)
		return node, false, err
	}

	key := CheckKey(checkID)
	if cached, ok := m.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(cached, &node); err == nil {
			return node, true, nil
		}
		// Undecodable entry: drop it and fall through to a fresh run.
		_ = m.cache.Delete(ctx, key)
	}

	f := m.join(ctx, key)
	defer m.leave(key, f)

	ch := m.group.DoChan(f.key, func() (any, error) {
		result, err := run(f.ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("cache: encode %s: %w", checkID, err)
		}
		// Store even when every caller has given up on this run.
		_ = m.cache.Set(context.WithoutCancel(f.ctx), key, encoded, ttl)
		return encoded, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return health.StatusNode{}, false, ctx.Err()
	}
	if res.Err != nil {
		return health.StatusNode{}, false, res.Err
	}

	if err := json.Unmarshal(res.Val.([]byte), &node); err != nil {
		return health.StatusNode{}, false, fmt.Errorf("cache: decode %s: %w", checkID, err)
	}
	return node, false, nil
}

// join registers a caller on the running flight for key, starting a new one
// if none is running. The flight's context carries ctx's values but not its
// cancellation.
func (m *CheckCache) join(ctx context.Context, key string) *flight {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flights == nil {
		m.flights = make(map[string]*flight)
	}
	f, ok := m.flights[key]
	if !ok {
		m.gen++
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{
			key:    key + "#" + strconv.FormatUint(m.gen, 10),
			ctx:    fctx,
			cancel: cancel,
		}
		m.flights[key] = f
	}
	f.waiters++
	return f
}

// leave drops a caller. The last caller out cancels the flight, which is a
// no-op when it already finished.
func (m *CheckCache) leave(key string, f *flight) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if m.flights[key] == f {
		delete(m.flights, key)
	}
}
