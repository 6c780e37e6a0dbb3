package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat keeps hundredths so stage timings line up in the output.
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// stopwatch starts timing a command step. The returned func logs msg at
// info level with the elapsed time under "took".
func stopwatch(logger *log.Logger) func(msg string, keyvals ...any) {
	start := time.Now()
	return func(msg string, keyvals ...any) {
		took := time.Since(start).Round(time.Millisecond)
		logger.Info(msg, append(keyvals, "took", took)...)
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// logFrom returns the command logger set by the root command. Commands run
// outside Execute (tests) get log.Default.
func logFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}
