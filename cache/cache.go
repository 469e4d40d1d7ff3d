package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache is a key/value store with per-entry TTL.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Expiry: Get must check expiry itself; correctness never depends on a
//   background sweep having run.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
// - Ownership: returned slices belong to the caller.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL<=0 means no caching.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes one cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Clear removes every cached value.
	Clear(ctx context.Context) error

	// Len returns the number of live entries.
	Len(ctx context.Context) int
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// CheckKey returns the cache key for a probe result.
// Format: check:<id>
func CheckKey(checkID string) string {
	return "check:" + checkID
}
