package runner

import (
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonwraymond/watchtower/auth"
)

// Namer derives the site name a report is labelled with.
type Namer interface {
	SiteName(r *auth.Request) string
}

// NamerFunc adapts a function to Namer.
type NamerFunc func(r *auth.Request) string

// SiteName calls f.
func (f NamerFunc) SiteName(r *auth.Request) string {
	return f(r)
}

// DefaultSiteName is used when nothing else names the site.
const DefaultSiteName = "site"

var (
	domainWithScheme = regexp.MustCompile(`^https?://([^.]+)\.`)
	domainBare       = regexp.MustCompile(`^([^.]+)\.`)
)

// EnvNamer resolves the site name from, in order: the site query
// parameter, the X-Site-Name header, the SITE environment variable, and the
// first label of the DOMAIN environment variable. The result is lowercase.
type EnvNamer struct {
	// Getenv reads the environment. Default: os.Getenv.
	Getenv func(string) string
}

// SiteName implements Namer.
func (n EnvNamer) SiteName(r *auth.Request) string {
	if site := strings.TrimSpace(r.GetQuery("site")); site != "" {
		return strings.ToLower(site)
	}
	if site := strings.TrimSpace(r.GetHeader("X-Site-Name")); site != "" {
		return strings.ToLower(site)
	}

	getenv := n.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if site := getenv("SITE"); site != "" {
		return strings.ToLower(site)
	}
	if domain := getenv("DOMAIN"); domain != "" {
		if m := domainWithScheme.FindStringSubmatch(domain); m != nil {
			return strings.ToLower(m[1])
		}
		if m := domainBare.FindStringSubmatch(domain); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return DefaultSiteName
}

// HealthcheckID returns "<site>_healthcheck".
func HealthcheckID(site string) string {
	return strings.ToLower(site) + "_healthcheck"
}

// DisplayName returns "<Site> Site Health" with the first letter upper-cased.
func DisplayName(site string) string {
	r, size := utf8.DecodeRuneInString(site)
	if r == utf8.RuneError {
		return " Site Health"
	}
	return string(unicode.ToUpper(r)) + site[size:] + " Site Health"
}
