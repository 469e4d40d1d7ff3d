package probe

import (
	"context"

	"github.com/jonwraymond/watchtower/health"
)

// PagesCheckConfig configures NewPagesCheck.
type PagesCheckConfig struct {
	HTTPOptions `mapstructure:",squash" yaml:",inline"`

	// Critical pages fail the report when Down.
	Critical []Endpoint `mapstructure:"critical" yaml:"critical"`

	// Important pages degrade the report to Partial at worst.
	Important []Endpoint `mapstructure:"important" yaml:"important"`
}

type pagesCheck struct {
	cfg PagesCheckConfig
}

// NewPagesCheck creates the "pages" probe with critical_pages and
// important_pages groups.
func NewPagesCheck(cfg PagesCheckConfig) health.Check {
	cfg.HTTPOptions = cfg.HTTPOptions.withDefaults()
	return &pagesCheck{cfg: cfg}
}

func (c *pagesCheck) ID() string   { return "pages" }
func (c *pagesCheck) Name() string { return "Page Health" }

func (c *pagesCheck) Run(ctx context.Context) (health.StatusNode, error) {
	if len(c.cfg.Critical) == 0 && len(c.cfg.Important) == 0 {
		return health.NewStatusNode(c.ID(), c.Name(), health.StatusUp, "No pages configured for checking", nil, nil), nil
	}

	all := append(append([]Endpoint(nil), c.cfg.Critical...), c.cfg.Important...)
	client, err := newClientFor(c.cfg.HTTPOptions, all)
	if err != nil {
		return health.NewStatusNode(c.ID(), c.Name(), health.StatusPartial,
			"Page checks unavailable: "+err.Error(), nil,
			map[string]any{"note": "Page checks failed but not critical"},
		), nil
	}

	var groups []health.StatusNode
	if len(c.cfg.Critical) > 0 {
		nodes := checkAll(ctx, client, c.cfg.Critical, c.cfg.Concurrency)
		groups = append(groups, health.Group("critical_pages", "Critical Pages", nodes, map[string]any{
			"totalPages": len(c.cfg.Critical),
		}))
	}
	if len(c.cfg.Important) > 0 {
		nodes := checkAll(ctx, client, c.cfg.Important, c.cfg.Concurrency)
		for i := range nodes {
			if nodes[i].Status == health.StatusDown {
				nodes[i].Status = health.StatusPartial
			}
		}
		groups = append(groups, health.Group("important_pages", "Important Pages", nodes, map[string]any{
			"totalPages": len(c.cfg.Important),
		}))
	}

	return health.Group(c.ID(), c.Name(), groups, nil), nil
}
