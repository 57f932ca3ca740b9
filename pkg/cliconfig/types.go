// Package cliconfig resolves productctl configuration from defaults, config
// files, environment variables and command-line flags.
package cliconfig

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config is the effective productctl configuration.
// Values are resolved with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.productctlrc.yaml in the working directory)
// 4. Global config file ($XDG_CONFIG_HOME/productctl/config.yaml)
// 5. Default values (lowest priority)
type Config struct {
	// BaseURL is the product collection endpoint.
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`

	// Timeout bounds each HTTP request. Zero disables it.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Logging
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// Addr is the listen address of the web view.
	Addr string `yaml:"addr" json:"addr"`

	// JSON switches command output to JSON.
	JSON bool `yaml:"json" json:"json"`

	// Sources records where each value came from, keyed by YAML name.
	Sources map[string]string `yaml:"-" json:"-"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("baseUrl is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("baseUrl %q is invalid: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("baseUrl %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("baseUrl %q has no host", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s must not be negative", c.Timeout)
	}
	return nil
}

// mark records the source of key.
func (c *Config) mark(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}
