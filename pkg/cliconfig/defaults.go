package cliconfig

// DefaultBaseURL is the public demo product API.
const DefaultBaseURL = "https://fakestoreapi.com/products"

// DefaultAddr is the default listen address of the web view.
const DefaultAddr = "127.0.0.1:4300"

// DefaultLogLevel keeps the CLI quiet unless something goes wrong.
const DefaultLogLevel = "warn"

// DefaultLogFormat is human-readable text.
const DefaultLogFormat = "text"

// Keys lists every configuration key in display order.
var Keys = []string{"baseUrl", "timeout", "logLevel", "logFormat", "addr", "json"}

// NewDefault creates a Config holding the default values.
func NewDefault() *Config {
	cfg := &Config{
		BaseURL:   DefaultBaseURL,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Addr:      DefaultAddr,
		Sources:   make(map[string]string),
	}
	for _, k := range Keys {
		cfg.Sources[k] = SourceDefault
	}
	return cfg
}
