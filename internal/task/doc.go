// Package task implements the asynchronous task-status tracking subsystem:
// the task record model, the tracker store, the lifecycle API used by
// background jobs, the runner that executes per-item work, and the janitor
// that evicts expired terminal records.
//
// All mutation goes through the Tracker; handlers and the push channel only
// ever read snapshots. A restart loses all in-flight task visibility unless
// the Postgres-backed store is configured, which is an accepted limitation.
package task
