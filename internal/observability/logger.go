package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the JSON process logger. Debug level in dev. Records
// logged with a request context carry its request, trace and span ids.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(contextHandler{inner: handler})
}
