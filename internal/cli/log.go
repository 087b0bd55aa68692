package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger builds the process logger. Serve speaks MCP on stdout, so w is
// normally stderr. Verbose runs log at debug level, which includes every
// store mutation and gesture transition.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
}

type loggerKey struct{}

func contextWithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFor returns the command logger carried by ctx, prefixed with
// component when one is given. Without a logger in ctx it falls back to
// log.Default().
func loggerFor(ctx context.Context, component string) *log.Logger {
	l, ok := ctx.Value(loggerKey{}).(*log.Logger)
	if !ok {
		l = log.Default()
	}
	if component != "" {
		return l.WithPrefix(component)
	}
	return l
}
