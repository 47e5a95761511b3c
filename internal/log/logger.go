// Package log provides the structured logger shared by every binary. Each
// Logger carries a component attribute so records from the HTTP layer,
// storage and workers can be told apart in one stream.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger bound to a component. The level methods of the
// embedded logger apply unchanged.
type Logger struct {
	*slog.Logger
	handler   slog.Handler
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the default text handler, used by tests to silence
	// or capture output.
	Handler slog.Handler
}

func New(cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}
	component := cfg.Component
	if component == "" {
		component = "app"
	}
	return newLogger(handler, component)
}

func newLogger(handler slog.Handler, component string) *Logger {
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		handler:   handler,
		component: component,
	}
}

// WithComponent rebinds the logger to another component, dropping any
// attributes accumulated via With.
func (l *Logger) WithComponent(component string) *Logger {
	return newLogger(l.handler, component)
}

// With returns a logger that adds the given attributes to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		handler:   l.handler,
		component: l.component,
	}
}

// Component reports which component the logger is bound to.
func (l *Logger) Component() string { return l.component }

// SetDefault routes the global slog functions through this logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
