// Package logging configures the log/slog loggers used across productctl.
//
// Components accept a *slog.Logger in their constructor or through an
// option and fall back to Nop when none is given:
//
//	log := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON})
//	log.Info("products loaded", "count", 20)
//
// Log output always goes to stderr by default so that command output on
// stdout stays machine readable.
package logging
