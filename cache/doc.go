// Package cache provides TTL caching for probe results.
//
// It provides a Cache interface with in-memory and Redis implementations,
// check-id key derivation, TTL policies, and a middleware that short-circuits
// probe execution on a hit. Values are stored as encoded bytes so every
// reader receives its own copy.
package cache
