// Package sanitize reduces what a health report reveals before it leaves the
// trust boundary.
//
// Strategies operate on a deep copy; the input report is never modified.
// Sensitive sections are located by stable node ID (health.NodeEnvVars,
// health.NodeBuildArtifacts) anywhere in the tree.
package sanitize

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonwraymond/watchtower/health"
)

// Strategy names a sanitization transform.
type Strategy string

const (
	// None returns the report unchanged.
	None Strategy = "none"

	// CountsOnly drops variable names, collapses build details to counts,
	// genericizes failure messages, drops raw error metadata from failed
	// nodes, strips url query strings and coarsens timing.
	CountsOnly Strategy = "counts-only"

	// RedactValues masks variable names and strips query strings from urls.
	RedactValues Strategy = "redact-values"
)

// Metadata keys rewritten by the sanitizer.
const (
	URLKey   = "url"
	ErrorKey = "error"
)

// RedactedURL replaces url metadata that cannot be parsed.
const RedactedURL = "[URL_REDACTED]"

// MaskChar replaces every character of a masked value.
const MaskChar = "*"

// ErrUnknownStrategy is returned by ParseStrategy.
var ErrUnknownStrategy = errors.New("sanitize: unknown strategy")

// ParseStrategy parses a strategy name. The empty string is None.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", None:
		return None, nil
	case CountsOnly:
		return CountsOnly, nil
	case RedactValues:
		return RedactValues, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// String returns the strategy name.
func (s Strategy) String() string {
	if s == "" {
		return string(None)
	}
	return string(s)
}

// Sanitize applies strategy to resp. For None (or an unknown strategy) resp
// itself is returned; otherwise the result is a transformed deep copy.
func Sanitize(resp *health.Response, strategy Strategy) *health.Response {
	if resp == nil {
		return nil
	}
	switch strategy {
	case CountsOnly:
		out := resp.Clone()
		countsOnly(out)
		return out
	case RedactValues:
		out := resp.Clone()
		redactValues(out)
		return out
	default:
		return resp
	}
}

func countsOnly(resp *health.Response) {
	health.Walk(resp.Services, func(n *health.StatusNode) {
		switch {
		case n.ID == health.NodeEnvVars && n.Metadata != nil:
			n.Metadata = map[string]any{
				"critical": envCounts(n.Metadata["critical"]),
				"optional": envCounts(n.Metadata["optional"]),
				"note":     "Details hidden for security (counts only)",
			}
			n.Message = "Environment variables check completed"
		case n.ID == health.NodeBuildArtifacts && n.Metadata != nil:
			n.Metadata = map[string]any{
				"checksCompleted": health.ListLen(n.Metadata["checks"]),
				"status":          string(n.Status),
			}
			n.Message = "Build artifacts verified"
		}
	})

	health.Walk(resp.Services, func(n *health.StatusNode) {
		if n.Status.Failed() {
			n.Message = ClassifyMessage(n.Name, n.Message)
			delete(n.Metadata, ErrorKey)
		}
		stripURL(n)
		if len(n.Metadata) == 0 {
			n.Metadata = nil
		}
	})

	resp.Performance.TotalCheckTime = roundTo(resp.Performance.TotalCheckTime, 100)
}

func redactValues(resp *health.Response) {
	health.Walk(resp.Services, func(n *health.StatusNode) {
		if n.ID == health.NodeEnvVars && n.Metadata != nil {
			n.Metadata = map[string]any{
				"critical": envMasked(n.Metadata["critical"]),
				"optional": envMasked(n.Metadata["optional"]),
				"note":     "Variable names masked for security",
			}
		}
		stripURL(n)
	})
}

func stripURL(n *health.StatusNode) {
	if raw, ok := n.Metadata[URLKey]; ok && raw != nil {
		n.Metadata[URLKey] = StripQuery(raw)
	}
}

func envGroup(v any) (present, missing []string, total int, hasTotal bool) {
	group, _ := v.(map[string]any)
	present = health.StringList(group["present"])
	missing = health.StringList(group["missing"])
	if t, ok := group["total"]; ok {
		return present, missing, health.IntValue(t), true
	}
	return present, missing, 0, false
}

func envCounts(v any) map[string]any {
	present, missing, total, hasTotal := envGroup(v)
	if !hasTotal {
		total = len(present) + len(missing)
	}
	return map[string]any{
		"presentCount": len(present),
		"missingCount": len(missing),
		"total":        total,
	}
}

func envMasked(v any) map[string]any {
	present, missing, _, _ := envGroup(v)
	return map[string]any{
		"present": maskAll(present),
		"missing": maskAll(missing),
		"total":   len(present) + len(missing),
	}
}

func maskAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Mask(v)
	}
	return out
}

// Mask replaces every character of s with MaskChar.
func Mask(s string) string {
	return strings.Repeat(MaskChar, len([]rune(s)))
}

// StripQuery removes the query string and fragment from an absolute URL.
// Values that are not absolute URLs are replaced with RedactedURL.
func StripQuery(v any) string {
	s, ok := v.(string)
	if !ok {
		return RedactedURL
	}
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return RedactedURL
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// ClassifyMessage maps a failure message onto a fixed generic category so
// upstream error text never reaches the caller.
func ClassifyMessage(name, message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "search") || strings.Contains(lower, "algolia"):
		return "Search service unavailable"
	case strings.Contains(lower, "graphql") || strings.Contains(message, "API"):
		return "API service unavailable"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return "Service timeout"
	case strings.Contains(lower, "connection"):
		return "Connection failed"
	default:
		return name + " check failed"
	}
}

func roundTo(v, step int64) int64 {
	if v < 0 {
		return -roundTo(-v, step)
	}
	return (v + step/2) / step * step
}
