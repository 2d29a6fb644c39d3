// Package redact provides utilities for scrubbing sensitive information from
// strings before they are logged or returned in error responses. The server
// handles ChatGPT session tokens, bearer tokens, and operator credentials;
// none of those may leak through error text.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

var (
	// Database and bridge connection strings with embedded credentials.
	connStringRegex = regexp.MustCompile(`(?i)(postgres|postgresql|http|https)://[^@\s]+@`)

	// Passwords and generic secrets in key=value or key: value form.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd|secret)([=:\s]['"]?)[^'"&\s]{3,}`)

	// API keys and session tokens.
	apiKeyRegex = regexp.MustCompile(`(?i)(api[_-]?key|session[_-]?token|access[_-]?token|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// JWTs: three dot-separated base64url segments starting with eyJ.
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Filesystem paths, e.g. the conversation export location.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	replacements = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{connStringRegex, RedactedCredentialPlaceholder + "@"},
		{passwordRegex, "${1}${2}" + RedactedCredentialPlaceholder},
		{apiKeyRegex, "${1}${2}" + RedactedTokenPlaceholder},
		{jwtRegex, RedactedTokenPlaceholder},
		{unixPathRegex, RedactedPathPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range replacements {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error redacts sensitive information from an error's message.
// Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
