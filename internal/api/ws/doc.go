// Package ws implements the websocket push channel for task progress.
// Delivery is best-effort: clients that fall behind are dropped and are
// expected to reconcile through the polling API.
package ws
