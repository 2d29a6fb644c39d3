package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains settings for the optional Postgres-backed task and
// conversation stores. When URL is empty the server runs with in-memory
// stores only.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// PasswordHash is the bcrypt hash of the single operator credential.
	PasswordHash         string `mapstructure:"password_hash"          validate:"required"`
	Username             string `mapstructure:"username"               validate:"required"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshLifetimeHours int    `mapstructure:"refresh_lifetime_hours" validate:"required,gt=0"`
}

// TaskConfig contains settings for the background task tracker.
type TaskConfig struct {
	// Retention is how long terminal task records stay visible before the
	// janitor evicts them.
	Retention time.Duration `mapstructure:"retention"      validate:"required"`
	// SweepInterval is how often the janitor looks for expired records.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`
}

// BridgeConfig contains settings for the browser-automation bridge that
// performs the actual ChatGPT conversation fetches and memory injections.
type BridgeConfig struct {
	BaseURL        string        `mapstructure:"base_url"        validate:"omitempty,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// ExportPath points at a ChatGPT conversations.json export used as the
	// conversation source when no bridge is configured.
	ExportPath string `mapstructure:"export_path"`
}

// LLMConfig contains settings for the optional Gemini summarization step.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
}
