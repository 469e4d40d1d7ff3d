// Package observe provides observability primitives for health probes.
//
// It carries the structured Logger used across watchtower (backed by zap),
// an OpenTelemetry Observer with pluggable exporters, and Instrumentation
// that wraps each health.Check in a span and records per-check metrics.
// It performs no I/O beyond exporter setup and log output.
package observe
