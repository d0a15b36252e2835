// Package config provides configuration loading and validation for logdigest.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
// Every field is optional; missing values take their defaults.
type Config struct {
	// Top is the number of ranked entries per report section.
	Top int `yaml:"top"`

	// Output is the CLI output format: text or json.
	Output string `yaml:"output,omitempty"`

	Server   ServerConfig    `yaml:"server"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	// Listen is the address the server binds, e.g. ":8000".
	Listen string `yaml:"listen"`

	// TempDir holds uploaded input while it is analyzed.
	// Empty means os.TempDir().
	TempDir string `yaml:"temp_dir,omitempty"`

	// MaxUploadBytes caps the request body size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnErrors fires only when the report has ERROR lines (default).
	WebhookTriggerOnErrors WebhookTrigger = "on_errors"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
