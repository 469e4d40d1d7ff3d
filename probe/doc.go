// Package probe provides reference health checks for watchtower.
//
// Probes implement health.Check and report failures through node status
// rather than errors, so the runner only sees an error for a genuine fault.
//
//   - NewHTTPCheck: a group of HTTP endpoints, each with retry and timeout.
//   - NewPagesCheck: critical and important pages of a site.
//   - NewBuildCheck: Go runtime, module build info, environment variables
//     and build artifacts.
//   - NewRedisCheck: Redis reachability via PING.
//
// HTTP probes resolve relative paths against a base URL taken from their
// config or, failing that, from SITE_URL, DEPLOY_URL or DOMAIN.
package probe
