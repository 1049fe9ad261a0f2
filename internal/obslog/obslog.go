// Package obslog builds the process-wide structured logger.
package obslog

import (
	"io"
	"log/slog"
)

// New builds a text-handler slog.Logger writing to w at the given
// level. JSON output can be swapped in by callers that need it by
// constructing their own slog.NewJSONHandler; text is the default
// because the operator console reads it directly.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
