package api

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds the transport configuration.
type Config struct {
	// BaseURL is the root of the exam service, without the /api prefix.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single HTTP request. Question generation is slow, so
	// the default is generous. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig configures retries of read operations.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config pointing at a local development server.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 2 * time.Minute,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overrides cfg with QPAPER_API_URL and QPAPER_API_TIMEOUT when set.
func ApplyEnv(cfg Config) (Config, error) {
	if u := os.Getenv("QPAPER_API_URL"); u != "" {
		cfg.BaseURL = u
	}
	if v := os.Getenv("QPAPER_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("QPAPER_API_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Validate checks that the base URL is usable and the retry settings are sane.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("API base URL %q has no host", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("API timeout must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	return nil
}
