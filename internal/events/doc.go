// Package events provides a lightweight in-process publish/subscribe
// mechanism that decouples the task tracker from the components interested
// in status changes (the websocket push hub and the metrics collector).
// Events carry their payload as JSON so that neither side depends on the
// other's types.
package events
