package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/swingscan/pkg/config"
)

// Logger is a structured logger wrapper around zerolog
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger writing to stdout; LOG_FORMAT=console|pretty is human readable
func New(cfg *config.Config) *Logger {
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "pretty":
		return NewWithWriter(cfg, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	default:
		return NewWithWriter(cfg, os.Stdout)
	}
}

// NewWithWriter creates a Logger writing to w. The level applies to this
// logger and its children only; the zerolog global level is left alone.
func NewWithWriter(cfg *config.Config, w io.Writer) *Logger {
	zlog := zerolog.New(w).
		Level(parseLogLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", "swingscan").
		Str("env", cfg.Env).
		Logger()

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// parseLogLevel converts string log level to zerolog.Level (default info)
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zlog.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// Fatal logs and exits the process
func (l *Logger) Fatal(msg string) { l.zlog.Fatal().Msg(msg) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// WithField returns a child logger with one extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithFields returns a child logger with multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	c := l.zlog.With()
	for k, v := range fields {
		c = c.Interface(k, v)
	}
	return &Logger{zlog: c.Logger()}
}

// WithError returns a child logger with an "error" field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// WithComponent tags every entry with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

type ctxKey struct{}

// IntoContext attaches l to ctx (request-scoped fields such as request_id)
func (l *Logger) IntoContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or fallback
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return fallback
}
