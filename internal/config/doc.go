// Package config defines the application configuration structure and
// loading logic. Configuration is read from environment variables with the
// RECALL_ prefix and, optionally, a config.yaml file; environment variables
// take precedence. Loaded configuration is validated before use.
package config
