package probe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/watchtower/health"
)

// HTTPCheckConfig configures NewHTTPCheck.
type HTTPCheckConfig struct {
	HTTPOptions `mapstructure:",squash" yaml:",inline"`

	Endpoints []Endpoint `mapstructure:"endpoints" yaml:"endpoints"`
}

type httpCheck struct {
	cfg HTTPCheckConfig
}

// NewHTTPCheck creates the "http" probe. Every endpoint becomes a child
// node; the group status is aggregated from them.
func NewHTTPCheck(cfg HTTPCheckConfig) health.Check {
	cfg.HTTPOptions = cfg.HTTPOptions.withDefaults()
	return &httpCheck{cfg: cfg}
}

func (c *httpCheck) ID() string   { return "http" }
func (c *httpCheck) Name() string { return "HTTP Endpoints" }

func (c *httpCheck) Run(ctx context.Context) (health.StatusNode, error) {
	if len(c.cfg.Endpoints) == 0 {
		return health.NewStatusNode(c.ID(), c.Name(), health.StatusUp, "No endpoints configured for checking", nil, nil), nil
	}

	client, err := newClientFor(c.cfg.HTTPOptions, c.cfg.Endpoints)
	if err != nil {
		return health.NewStatusNode(c.ID(), c.Name(), health.StatusPartial,
			"HTTP checks unavailable: "+err.Error(), nil,
			map[string]any{"note": "HTTP checks failed but not critical"},
		), nil
	}

	children := checkAll(ctx, client, c.cfg.Endpoints, c.cfg.Concurrency)
	return health.Group(c.ID(), c.Name(), children, map[string]any{
		"totalEndpoints": len(c.cfg.Endpoints),
	}), nil
}

// newClientFor resolves the base URL only when some endpoint needs it.
func newClientFor(opts HTTPOptions, endpoints []Endpoint) (*HTTPClient, error) {
	base := opts.BaseURL
	if base == "" {
		for _, ep := range endpoints {
			if isAbsolute(ep.Path) {
				continue
			}
			resolved, err := ResolveBaseURL(opts.Getenv)
			if err != nil {
				return nil, err
			}
			base = resolved
			break
		}
	}
	return NewHTTPClient(base, opts), nil
}

// checkAll probes endpoints in parallel and returns nodes in input order.
func checkAll(ctx context.Context, client *HTTPClient, endpoints []Endpoint, limit int) []health.StatusNode {
	nodes := make([]health.StatusNode, len(endpoints))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, ep := range endpoints {
		g.Go(func() error {
			nodes[i] = client.CheckEndpoint(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()
	return nodes
}
