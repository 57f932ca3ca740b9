package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvBaseURL   = "PRODUCTCTL_BASE_URL"
	EnvTimeout   = "PRODUCTCTL_TIMEOUT"
	EnvLogLevel  = "PRODUCTCTL_LOG_LEVEL"
	EnvLogFormat = "PRODUCTCTL_LOG_FORMAT"
	EnvAddr      = "PRODUCTCTL_ADDR"
	EnvJSON      = "PRODUCTCTL_JSON"
)

// LoadEnvConfig applies environment variables that are set and non-empty.
func LoadEnvConfig(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
		cfg.mark("baseUrl", SourceEnv)
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
		cfg.mark("timeout", SourceEnv)
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.mark("logLevel", SourceEnv)
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.mark("logFormat", SourceEnv)
	}
	if v := getenv(EnvAddr); v != "" {
		cfg.Addr = v
		cfg.mark("addr", SourceEnv)
	}
	if v := getenv(EnvJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJSON, err)
		}
		cfg.JSON = b
		cfg.mark("json", SourceEnv)
	}
	return nil
}
