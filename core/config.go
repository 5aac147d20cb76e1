package core

import (
	"net/url"
	"strings"
)

const DefaultBaseURL = "http://localhost:8083/api/"

type Config struct {
	BaseURL      string `koanf:"base_url" mapstructure:"base_url"`
	ClientID     string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string `koanf:"client_secret" mapstructure:"client_secret"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
	}
}

// Validate checks that the credentials needed to authenticate are present.
func (c Config) Validate() error {
	if err := c.validateShape(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return FailedConfigError("hashgate: client_id is required")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return FailedConfigError("hashgate: client_secret is required")
	}
	return nil
}

// validateShape runs on partially loaded layers, where credentials may still
// arrive from the runtime layer.
func (c *Config) validateShape() error {
	if c == nil {
		return FailedConfigError("hashgate: config is nil")
	}
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return nil
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return FailedConfigError("hashgate: base_url must be an absolute url")
	}
	return nil
}
