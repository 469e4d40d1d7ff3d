package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/watchtower/health"
)

type countingProbe struct {
	calls atomic.Int32
	node  health.StatusNode
	err   error
	delay time.Duration
}

func (p *countingProbe) run(ctx context.Context) (health.StatusNode, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.node, p.err
}

func TestCheckCache_HitSkipsProbe(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	probe := &countingProbe{node: health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, map[string]any{"latency": 3})}
	ctx := context.Background()

	first, hit, err := cc.Execute(ctx, "db", time.Minute, probe.run)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := cc.Execute(ctx, "db", time.Minute, probe.run)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, int32(1), probe.calls.Load())
	assert.Equal(t, first, second, "miss and hit must return identical nodes")
}

func TestCheckCache_Disabled(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	probe := &countingProbe{node: health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, nil)}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, hit, err := cc.Execute(ctx, "db", 0, probe.run)
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, int32(3), probe.calls.Load())
	assert.Equal(t, 0, cc.Cache().Len(ctx))
}

func TestCheckCache_ErrorsNotCached(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	probe := &countingProbe{err: errors.New("boom")}
	ctx := context.Background()

	_, _, err := cc.Execute(ctx, "db", time.Minute, probe.run)
	require.Error(t, err)
	_, _, err = cc.Execute(ctx, "db", time.Minute, probe.run)
	require.Error(t, err)

	assert.Equal(t, int32(2), probe.calls.Load())
}

func TestCheckCache_CallersGetCopies(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	probe := &countingProbe{node: health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, map[string]any{"k": "v"})}
	ctx := context.Background()

	first, _, err := cc.Execute(ctx, "db", time.Minute, probe.run)
	require.NoError(t, err)
	first.Metadata["k"] = "mutated"

	second, _, err := cc.Execute(ctx, "db", time.Minute, probe.run)
	require.NoError(t, err)
	assert.Equal(t, "v", second.Metadata["k"])
}

func TestCheckCache_CoalescesConcurrentMisses(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	probe := &countingProbe{
		node:  health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, nil),
		delay: 50 * time.Millisecond,
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := cc.Execute(ctx, "db", time.Minute, probe.run)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), probe.calls.Load())
}

func TestCheckCache_StoresAfterCallerCancels(t *testing.T) {
	mem := NewMemoryCache()
	cc := NewCheckCache(mem, DefaultPolicy())
	probe := &countingProbe{
		node:  health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, nil),
		delay: 20 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := cc.Execute(ctx, "db", time.Minute, probe.run)
	require.ErrorIs(t, err, context.Canceled)

	assert.Eventually(t, func() bool {
		_, ok := mem.Get(context.Background(), CheckKey("db"))
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestCheckCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	started := make(chan struct{})
	var calls atomic.Int32
	run := func(ctx context.Context) (health.StatusNode, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-time.After(50 * time.Millisecond):
			return health.NewStatusNode("db", "Database", health.StatusUp, "ok", nil, nil), nil
		case <-ctx.Done():
			return health.StatusNode{}, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := cc.Execute(firstCtx, "db", time.Minute, run)
		firstErr <- err
	}()
	<-started

	secondDone := make(chan struct{})
	var (
		second    health.StatusNode
		secondErr error
	)
	go func() {
		defer close(secondDone)
		second, _, secondErr = cc.Execute(context.Background(), "db", time.Minute, run)
	}()

	time.Sleep(5 * time.Millisecond)
	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	<-secondDone
	require.NoError(t, secondErr)
	assert.Equal(t, health.StatusUp, second.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckCache_LastCallerOutCancelsRun(t *testing.T) {
	cc := NewCheckCache(NewMemoryCache(), DefaultPolicy())
	cancelled := make(chan struct{})
	run := func(ctx context.Context) (health.StatusNode, error) {
		<-ctx.Done()
		close(cancelled)
		return health.StatusNode{}, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err := cc.Execute(ctx, "db", time.Minute, run)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("shared run was not cancelled after its only caller left")
	}
}
