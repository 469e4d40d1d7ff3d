package httpapi

import (
	"net/http"

	"github.com/jonwraymond/watchtower/health"
)

// Response headers set on every reply.
const (
	ContentTypeJSON = "application/json"
	CacheControl    = "no-cache, no-store, must-revalidate"
)

// ErrorBody is the JSON body of non-report replies.
type ErrorBody struct {
	Error string `json:"error"`
}

var (
	methodNotAllowed = ErrorBody{Error: "Method not allowed"}
	internalError    = ErrorBody{Error: "Health check failed"}
)

// StatusCode maps a report to its HTTP status.
func StatusCode(resp *health.Response) int {
	if resp != nil && resp.Status == health.StatusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
