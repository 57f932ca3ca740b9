package cliconfig

import (
	"fmt"
	"time"
)

// FlagSet is the subset of a flag set the config layer needs. It is
// satisfied by *pflag.FlagSet.
type FlagSet interface {
	Changed(name string) bool
	GetString(name string) (string, error)
	GetBool(name string) (bool, error)
	GetDuration(name string) (time.Duration, error)
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"base-url":   "baseUrl",
	"timeout":    "timeout",
	"log-level":  "logLevel",
	"log-format": "logFormat",
	"addr":       "addr",
	"json":       "json",
}

// ApplyFlags overrides cfg with every flag the user set explicitly. Flags
// that are not defined on fs are skipped.
func ApplyFlags(cfg *Config, fs FlagSet) error {
	for flag, key := range flagKeys {
		if !fs.Changed(flag) {
			continue
		}
		var err error
		switch key {
		case "baseUrl":
			cfg.BaseURL, err = fs.GetString(flag)
		case "timeout":
			cfg.Timeout, err = fs.GetDuration(flag)
		case "logLevel":
			cfg.LogLevel, err = fs.GetString(flag)
		case "logFormat":
			cfg.LogFormat, err = fs.GetString(flag)
		case "addr":
			cfg.Addr, err = fs.GetString(flag)
		case "json":
			cfg.JSON, err = fs.GetBool(flag)
		}
		if err != nil {
			return fmt.Errorf("flag --%s: %w", flag, err)
		}
		cfg.mark(key, SourceFlag)
	}
	return nil
}

// Value returns the display form of a config key.
func (c *Config) Value(key string) string {
	switch key {
	case "baseUrl":
		return c.BaseURL
	case "timeout":
		if c.Timeout == 0 {
			return "none"
		}
		return c.Timeout.String()
	case "logLevel":
		return c.LogLevel
	case "logFormat":
		return c.LogFormat
	case "addr":
		return c.Addr
	case "json":
		return fmt.Sprint(c.JSON)
	default:
		return ""
	}
}

// Source returns where key's value came from.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}
