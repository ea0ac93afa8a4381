package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names. Each overrides the corresponding settings
// file field.
const (
	EnvConfig        = "ENGINEWATCH_CONFIG"
	EnvNotifyWebhook = "ENGINEWATCH_NOTIFY_WEBHOOK"
	EnvLogWebhook    = "ENGINEWATCH_LOG_WEBHOOK"
)

// Defaults for optional settings.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultStateDB      = "enginewatch.db"
)

// Settings is the operator configuration for the daemon.
type Settings struct {
	// Config is the watch config source: a file path or an http(s) URL.
	Config string `yaml:"config"`
	// NotifyWebhook is the messaging webhook notifications are posted to.
	NotifyWebhook string `yaml:"notify_webhook"`
	// LogWebhook, when set, receives warn-and-above log records.
	LogWebhook string `yaml:"log_webhook"`

	PollInterval Duration `yaml:"poll_interval"`
	StateDB      string   `yaml:"state_db"`
	PGNURL       string   `yaml:"pgn_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Duration wraps time.Duration so settings can write "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// DefaultSettings returns settings with every optional field at its
// default.
func DefaultSettings() *Settings {
	return &Settings{
		PollInterval: Duration(DefaultPollInterval),
		StateDB:      DefaultStateDB,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// LoadSettings reads a settings file and applies environment overrides.
// An empty path skips the file and uses defaults plus environment. The
// settings file is strict: unknown keys are an error, catching typos
// before they silently disable a webhook.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open settings: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(s); err != nil {
			return nil, ValidationErrors{{Code: ErrCodeSettings, Message: fmt.Sprintf("parse settings %s: %v", path, err)}}
		}
	}

	if v := os.Getenv(EnvConfig); v != "" {
		s.Config = v
	}
	if v := os.Getenv(EnvNotifyWebhook); v != "" {
		s.NotifyWebhook = v
	}
	if v := os.Getenv(EnvLogWebhook); v != "" {
		s.LogWebhook = v
	}

	if s.PollInterval <= 0 {
		s.PollInterval = Duration(DefaultPollInterval)
	}
	if s.StateDB == "" {
		s.StateDB = DefaultStateDB
	}

	return s, nil
}

// ValidateForRun checks the fields the daemon cannot run without.
func (s *Settings) ValidateForRun() error {
	var errs ValidationErrors
	if s.Config == "" {
		errs = append(errs, ValidationError{Code: ErrCodeSettings, Path: "config", Message: "watch config source is required (set config or " + EnvConfig + ")"})
	}
	if s.NotifyWebhook == "" {
		errs = append(errs, ValidationError{Code: ErrCodeSettings, Path: "notify_webhook", Message: "notify webhook is required (set notify_webhook or " + EnvNotifyWebhook + ")"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
