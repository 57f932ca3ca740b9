package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level aliases slog.Level so callers need not import log/slog for it.
type Level = slog.Level

// Levels productctl understands, from --log-level or PRODUCTCTL_LOG_LEVEL.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format names a log line encoding.
type Format string

// Encodings accepted by --log-format.
const (
	FormatText Format = "text" // key=value lines
	FormatJSON Format = "json" // one object per line
)

// Config describes a productctl logger. The zero value writes info and
// above as text to stderr.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// CLIConfig is what the command line uses when nothing is configured:
// warnings and errors only, so that regular runs print just their results.
func CLIConfig() Config {
	return Config{Level: LevelWarn, Format: FormatText, Output: os.Stderr}
}

// New returns a logger for cfg.
func New(cfg Config) *slog.Logger {
	return slog.New(Handler(cfg))
}

// Handler returns the slog handler behind New, for callers that wrap it.
func Handler(cfg Config) slog.Handler {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// FromStrings builds a logger from the resolved logLevel and logFormat
// settings on top of CLIConfig, writing to w when it is not nil.
func FromStrings(level, format string, w io.Writer) *slog.Logger {
	cfg := CLIConfig()
	cfg.Level, cfg.Format = ParseLevel(level), ParseFormat(format)
	if w != nil {
		cfg.Output = w
	}
	return New(cfg)
}

// Nop returns a logger that drops every record. Packages fall back to it when
// no logger is supplied.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a Level, ignoring case and surrounding
// space. "warning" is an alias for "warn". Anything else is LevelWarn.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// ParseFormat maps "json" (any case) to FormatJSON and anything else to
// FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
