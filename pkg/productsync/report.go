package productsync

import (
	"log/slog"
)

// NoticeKind classifies a notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeValidation NoticeKind = "validation"
	NoticeSuccess    NoticeKind = "success"
	NoticeFailure    NoticeKind = "failure"
)

// Notice is an immediate message for the user, separate from the error
// field of the state.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Op      Op         `json:"op"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
}

// Reporter receives notices. Reports are delivered synchronously from the
// goroutine that ran the operation, after the state change is committed.
type Reporter interface {
	Report(Notice)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Notice)

// Report calls f(n).
func (f ReporterFunc) Report(n Notice) { f(n) }

// LogReporter writes notices to a logger.
type LogReporter struct {
	Log *slog.Logger
}

// Report logs n at a level matching its kind.
func (r LogReporter) Report(n Notice) {
	if r.Log == nil {
		return
	}
	attrs := []any{"op", string(n.Op), "kind", string(n.Kind)}
	if n.Err != nil {
		attrs = append(attrs, "error", n.Err)
	}
	switch n.Kind {
	case NoticeSuccess:
		r.Log.Info(n.Message, attrs...)
	default:
		r.Log.Warn(n.Message, attrs...)
	}
}
