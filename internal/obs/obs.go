// Package obs owns the process-wide slog logger and the correlation fields
// (run, test, step, request) attached to every line.
package obs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

type correlationKey struct{}

// Correlation identifies where a log line came from.
type Correlation struct {
	RunID     string
	Test      string
	Step      string
	RequestID string
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init installs the JSON logger on stderr at the level named by LOG_LEVEL
// (debug, info, warn or error; info when unset). Later calls are no-ops.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		return
	}
	logger = newLogger(os.Stderr, levelFromEnv(os.Getenv("LOG_LEVEL")))
	slog.SetDefault(logger)
}

// SetOutputForTests sends every level to w until the returned func is called.
func SetOutputForTests(w io.Writer) func() {
	mu.Lock()
	prev := logger
	logger = newLogger(w, slog.LevelDebug)
	slog.SetDefault(logger)
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger = prev
		if logger == nil {
			logger = newLogger(os.Stderr, slog.LevelInfo)
		}
		slog.SetDefault(logger)
	}
}

func levelFromEnv(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if t, ok := a.Value.Any().(time.Time); ok && a.Key == slog.TimeKey {
				return slog.String(a.Key, t.UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}))
}

func current() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init()
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// Pkg returns the logger tagged with pkg.
func Pkg(pkg string) *slog.Logger {
	return current().With("pkg", pkg)
}

// From returns the logger carrying the correlation fields of ctx.
func From(ctx context.Context) *slog.Logger {
	attrs := CorrelationFrom(ctx).attrs()
	if len(attrs) == 0 {
		return current()
	}
	return current().With(attrs...)
}

// WithRun tags ctx with the capture run id.
func WithRun(ctx context.Context, runID string) context.Context {
	return WithCorrelation(ctx, Correlation{RunID: runID})
}

// WithTest tags ctx with the running test's name.
func WithTest(ctx context.Context, name string) context.Context {
	return WithCorrelation(ctx, Correlation{Test: strings.TrimSpace(name)})
}

// WithStep tags ctx with a step label inside a test.
func WithStep(ctx context.Context, step string) context.Context {
	return WithCorrelation(ctx, Correlation{Step: step})
}

// WithCorrelation overlays the non-empty fields of c on those already in ctx.
func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	merged := CorrelationFrom(ctx)
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&merged.RunID, c.RunID},
		{&merged.Test, c.Test},
		{&merged.Step, c.Step},
		{&merged.RequestID, c.RequestID},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return context.WithValue(ctx, correlationKey{}, merged)
}

// CorrelationFrom returns the correlation stored in ctx, or the zero value.
func CorrelationFrom(ctx context.Context) Correlation {
	if ctx == nil {
		return Correlation{}
	}
	c, _ := ctx.Value(correlationKey{}).(Correlation)
	return c
}

func (c Correlation) attrs() []any {
	var out []any
	add := func(k, v string) {
		if v != "" {
			out = append(out, k, v)
		}
	}
	add("run_id", c.RunID)
	add("test", c.Test)
	add("step", c.Step)
	add("request_id", c.RequestID)
	return out
}
