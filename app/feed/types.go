package feed

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

const (
	DefaultRefreshInterval = 3600
	DefaultTimeout         = 15
)

// Feed names come from file names and appear in API paths.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Config is one feed subscription, read from <feeds-dir>/<name>.yml.
type Config struct {
	Name     string         `yaml:"-"` // Derived from filename (without extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
}

func (s ConfigSettings) RefreshDuration() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s ConfigSettings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (c *Config) applyDefaults() {
	if c.Settings.RefreshInterval == 0 {
		c.Settings.RefreshInterval = DefaultRefreshInterval
	}
	if c.Settings.Timeout == 0 {
		c.Settings.Timeout = DefaultTimeout
	}
}

// Validate checks the subscription after defaults have been applied.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("feed config is nil")
	}

	if c.Name == "" {
		return errors.New("feed name is required")
	}
	if !namePattern.MatchString(c.Name) {
		return fmt.Errorf("feed name %q may only contain letters, digits, '.', '_' and '-'", c.Name)
	}

	if c.URL == "" {
		return errors.New("feed URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("feed URL must include a host")
	}

	if c.Settings.RefreshInterval < 0 {
		return errors.New("refresh interval must be non-negative")
	}
	if c.Settings.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}

	return nil
}
