package probe

import "errors"

// ErrNoBaseURL is returned when a relative path cannot be resolved because
// no base URL is configured.
var ErrNoBaseURL = errors.New("probe: no base URL configured, set SITE_URL, DEPLOY_URL or DOMAIN")
