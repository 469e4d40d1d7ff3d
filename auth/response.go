package auth

import "net/http"

// UnauthorizedBody is the JSON body of a denial.
type UnauthorizedBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UnauthorizedResult is a transport-neutral denial response.
type UnauthorizedResult struct {
	StatusCode int
	Body       UnauthorizedBody
}

// UnauthorizedResponse builds the denial response. Strict responses carry
// only the generic error; otherwise a short hint is added.
func UnauthorizedResponse(strict bool) UnauthorizedResult {
	res := UnauthorizedResult{
		StatusCode: http.StatusUnauthorized,
		Body:       UnauthorizedBody{Error: "Unauthorized"},
	}
	if !strict {
		res.Body.Message = "Health check requires authentication"
	}
	return res
}
