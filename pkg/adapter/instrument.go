package adapter

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Instrumenter wraps every statement the adapter sends. Implementations must
// call fn exactly once and return its error unchanged.
type Instrumenter interface {
	Instrument(ctx context.Context, name, sql string, fn func(context.Context) error) error
}

// InstrumenterFunc adapts a function to Instrumenter.
type InstrumenterFunc func(ctx context.Context, name, sql string, fn func(context.Context) error) error

func (f InstrumenterFunc) Instrument(ctx context.Context, name, sql string, fn func(context.Context) error) error {
	return f(ctx, name, sql, fn)
}

// LogInstrumenter logs each statement with its duration at debug level, and
// failures at warn level.
type LogInstrumenter struct {
	Logger *slog.Logger
}

func (l LogInstrumenter) Instrument(ctx context.Context, name, sql string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)

	attrs := []any{
		slog.String("name", name),
		slog.String("sql", sql),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		l.Logger.WarnContext(ctx, "statement failed", append(attrs, slog.String("kind", KindOf(err).String()), slog.Any("error", err))...)
		return err
	}
	l.Logger.DebugContext(ctx, "statement executed", attrs...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
