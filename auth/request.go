package auth

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// Header and query names read by the gate.
const (
	HeaderAuthorization = "Authorization"
	HeaderToken         = "X-Healthcheck-Token"
	QueryToken          = "token"
)

// Request is the transport-neutral view of an inbound request.
type Request struct {
	Header http.Header
	Query  url.Values
}

// NewRequest creates an empty request.
func NewRequest() *Request {
	return &Request{Header: http.Header{}, Query: url.Values{}}
}

// FromHTTP builds a Request from a net/http request. The returned request
// shares header and query storage with r.
func FromHTTP(r *http.Request) *Request {
	if r == nil {
		return NewRequest()
	}
	return &Request{Header: r.Header, Query: r.URL.Query()}
}

// GetHeader returns the first value of a header (case-insensitive).
func (r *Request) GetHeader(name string) string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get(name)
}

// GetQuery returns the first value of a query parameter.
func (r *Request) GetQuery(name string) string {
	if r == nil || r.Query == nil {
		return ""
	}
	return r.Query.Get(name)
}

// ExtractToken returns the first non-empty candidate token, trying in order:
// Authorization Bearer, X-Healthcheck-Token, the token query parameter (only
// when allowQuery is set), and the password of Authorization Basic.
func ExtractToken(r *Request, allowQuery bool) string {
	authz := r.GetHeader(HeaderAuthorization)

	if rest, ok := cutPrefixFold(authz, "Bearer "); ok {
		if tok := strings.TrimSpace(rest); tok != "" {
			return tok
		}
	}
	if tok := strings.TrimSpace(r.GetHeader(HeaderToken)); tok != "" {
		return tok
	}
	if allowQuery {
		if tok := strings.TrimSpace(r.GetQuery(QueryToken)); tok != "" {
			return tok
		}
	}
	if rest, ok := cutPrefixFold(authz, "Basic "); ok {
		return basicPassword(strings.TrimSpace(rest))
	}
	return ""
}

func basicPassword(encoded string) string {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	_, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return ""
	}
	return password
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
