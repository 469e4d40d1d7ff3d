// Package httpapi exposes a runner over HTTP.
//
// Handler serves net/http and FiberHandler serves Fiber. Both accept GET
// only, run the auth gate before any probe executes, and map the report to a
// status code: 503 when the overall status is Down, 200 otherwise. Responses
// are never cacheable.
package httpapi
