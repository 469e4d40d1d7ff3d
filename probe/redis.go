package probe

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonwraymond/watchtower/health"
	"github.com/jonwraymond/watchtower/resilience"
)

// DefaultRedisTimeout bounds the PING when RedisCheckConfig.Timeout is unset.
const DefaultRedisTimeout = 2 * time.Second

// RedisCheckConfig configures NewRedisCheck.
type RedisCheckConfig struct {
	// ID defaults to "redis".
	ID string
	// Name defaults to "Redis".
	Name    string
	Timeout time.Duration
}

type redisCheck struct {
	client goredis.UniversalClient
	cfg    RedisCheckConfig
}

// NewRedisCheck creates a probe that PINGs client.
func NewRedisCheck(client goredis.UniversalClient, cfg RedisCheckConfig) health.Check {
	if cfg.ID == "" {
		cfg.ID = "redis"
	}
	if cfg.Name == "" {
		cfg.Name = "Redis"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRedisTimeout
	}
	return &redisCheck{client: client, cfg: cfg}
}

func (c *redisCheck) ID() string   { return c.cfg.ID }
func (c *redisCheck) Name() string { return c.cfg.Name }

func (c *redisCheck) Run(ctx context.Context) (health.StatusNode, error) {
	if c.client == nil {
		return health.NewStatusNode(c.cfg.ID, c.cfg.Name, health.StatusUnknown, "Redis client not configured", nil, nil), nil
	}

	start := time.Now()
	err := resilience.ExecuteWithTimeout(ctx, c.cfg.Timeout, func(ctx context.Context) error {
		return c.client.Ping(ctx).Err()
	})
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return health.NewStatusNode(c.cfg.ID, c.cfg.Name, health.StatusDown,
			fmt.Sprintf("%s (%dms)", err.Error(), elapsed), nil,
			map[string]any{"error": err.Error(), "responseTime": elapsed},
		), nil
	}

	meta := map[string]any{"responseTime": elapsed}
	if stats := c.client.PoolStats(); stats != nil {
		meta["totalConns"] = int(stats.TotalConns)
		meta["idleConns"] = int(stats.IdleConns)
	}
	return health.NewStatusNode(c.cfg.ID, c.cfg.Name, health.StatusUp,
		fmt.Sprintf("PONG (%dms)", elapsed), nil, meta), nil
}
