package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/watchtower/auth"
	"github.com/jonwraymond/watchtower/probe"
	"github.com/jonwraymond/watchtower/sanitize"
)

// Templates are preset probe sets for common deployments. A template only
// fills in what the file and environment leave unset.
const (
	TemplateNone    = ""
	TemplateDefault = "default"
	TemplateMinimal = "minimal"
)

// templateDefaults layers the template's runner settings under the file.
func templateDefaults(v *viper.Viper, name string) error {
	switch name {
	case TemplateNone:
	case TemplateDefault:
		v.SetDefault("runner.budget", 5*time.Second)
		v.SetDefault("runner.cache_ttl", 60*time.Second)
		if auth.IsProduction() {
			v.SetDefault("runner.sanitize", string(sanitize.CountsOnly))
		}
	case TemplateMinimal:
		v.SetDefault("runner.budget", 3*time.Second)
		v.SetDefault("runner.cache_ttl", time.Duration(0))
	default:
		return fmt.Errorf("%w: unknown template %q", ErrInvalidConfig, name)
	}
	return nil
}

// applyTemplate installs the template's probes when no check section is
// configured.
func (c *Config) applyTemplate() {
	if c.Checks.Build != nil || c.Checks.HTTP != nil || c.Checks.Pages != nil || c.Checks.Redis != nil {
		return
	}
	switch c.Template {
	case TemplateDefault:
		c.Checks.Pages = &probe.PagesCheckConfig{
			HTTPOptions: probe.HTTPOptions{Timeout: 5 * time.Second, Retries: 2},
			Critical: []probe.Endpoint{
				{Path: "/", Name: "Homepage"},
				{Path: "/robots.txt", Name: "Robots.txt"},
				{Path: "/sitemap.xml", Name: "Sitemap"},
				{Path: "/favicon.ico", Name: "Favicon"},
			},
		}
		c.Checks.Build = &probe.BuildCheckConfig{
			CriticalEnv: []string{"APP_ENV"},
			OptionalEnv: []string{"SITE_URL", "DEPLOY_URL", "DOMAIN"},
		}
	case TemplateMinimal:
		c.Checks.Build = &probe.BuildCheckConfig{
			OptionalEnv: []string{"APP_ENV"},
		}
	}
}
