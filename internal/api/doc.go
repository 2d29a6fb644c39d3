// Package api exposes the HTTP surface of the server: routing glue,
// request decoding and validation, and the translation of service results
// and errors into JSON responses with sanitized client-facing messages.
package api
