package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfigDir is the directory under the user config dir.
const GlobalConfigDir = "productctl"

// LocalConfigFileNames are searched in the working directory, in order.
var LocalConfigFileNames = []string{".productctlrc.yaml", ".productctlrc.yml"}

// GlobalConfigFileNames are searched in the global config dir, in order.
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// fileConfig mirrors Config with pointers so that explicitly set zero
// values in a file can be told apart from absent keys.
type fileConfig struct {
	BaseURL   *string `yaml:"baseUrl"`
	Timeout   *string `yaml:"timeout"`
	LogLevel  *string `yaml:"logLevel"`
	LogFormat *string `yaml:"logFormat"`
	Addr      *string `yaml:"addr"`
	JSON      *bool   `yaml:"json"`
}

// ConfigError is a problem with a config file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// Loader resolves configuration. The zero value uses the process working
// directory, the user config dir and the process environment.
type Loader struct {
	// WorkDir is searched for a local config file.
	WorkDir string
	// ConfigDir is the user config dir holding GlobalConfigDir.
	ConfigDir string
	// Getenv looks up environment variables.
	Getenv func(string) string
}

func (l Loader) workDir() (string, error) {
	if l.WorkDir != "" {
		return l.WorkDir, nil
	}
	return os.Getwd()
}

func (l Loader) configDir() (string, error) {
	if l.ConfigDir != "" {
		return l.ConfigDir, nil
	}
	return os.UserConfigDir()
}

func (l Loader) getenv(key string) string {
	if l.Getenv != nil {
		return l.Getenv(key)
	}
	return os.Getenv(key)
}

// LocalConfigPath returns the first existing local config file, or "".
func (l Loader) LocalConfigPath() string {
	dir, err := l.workDir()
	if err != nil {
		return ""
	}
	return firstExisting(dir, LocalConfigFileNames)
}

// GlobalConfigPath returns the first existing global config file, or "".
func (l Loader) GlobalConfigPath() string {
	dir, err := l.configDir()
	if err != nil {
		return ""
	}
	return firstExisting(filepath.Join(dir, GlobalConfigDir), GlobalConfigFileNames)
}

func firstExisting(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load merges defaults, the global file, the local file and the
// environment. A malformed file or environment value is an error; missing
// files are not.
func (l Loader) Load() (*Config, error) {
	cfg := NewDefault()

	if path := l.GlobalConfigPath(); path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := applyFile(cfg, fc, SourceGlobal, path); err != nil {
			return nil, err
		}
	}

	if path := l.LocalConfigPath(); path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := applyFile(cfg, fc, SourceLocal, path); err != nil {
			return nil, err
		}
	}

	if err := LoadEnvConfig(cfg, l.getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAll loads configuration with the default Loader.
func LoadAll() (*Config, error) {
	return Loader{}.Load()
}

// loadConfigFile parses a YAML config file. Unknown keys are rejected.
func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	return &fc, nil
}

func applyFile(cfg *Config, fc *fileConfig, source, path string) error {
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
		cfg.mark("baseUrl", source)
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return &ConfigError{Path: path, Message: fmt.Sprintf("timeout: %v", err)}
		}
		cfg.Timeout = d
		cfg.mark("timeout", source)
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
		cfg.mark("logLevel", source)
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
		cfg.mark("logFormat", source)
	}
	if fc.Addr != nil {
		cfg.Addr = *fc.Addr
		cfg.mark("addr", source)
	}
	if fc.JSON != nil {
		cfg.JSON = *fc.JSON
		cfg.mark("json", source)
	}
	return nil
}
