// Package store defines interfaces for conversation and export persistence.
// These interfaces abstract the underlying data storage mechanism from the
// application's core logic; the default implementations here are in-memory,
// and Postgres-backed implementations live in internal/platform/postgres.
package store
