// Package auth implements the access gate in front of health reports.
//
// Validate is a pure predicate over a Request and a Config. Tokens are read
// from the Authorization header (Bearer, then Basic), the X-Healthcheck-Token
// header, or an opt-in token query parameter, and compared in constant time.
// RequireAuth and StrictMode default to true in production-like
// environments and to false elsewhere.
//
// A CustomValidator replaces token checking entirely; JWTValidator is one
// such validator for signed bearer tokens.
package auth
