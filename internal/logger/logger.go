// Package logger provides structured logging for sheetsql.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger with key-value helpers.
type Logger struct {
	sugar *zap.SugaredLogger
	base  *zap.Logger
}

// ParseLevel converts a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// New creates a Logger writing to output ("stderr", "stdout" or a file path)
// with a "json" or "console" encoder.
func New(level, format, output string) (*Logger, error) {
	var ws zapcore.WriteSyncer
	switch strings.ToLower(output) {
	case "stderr", "":
		ws = zapcore.AddSync(os.Stderr)
	case "stdout":
		ws = zapcore.AddSync(os.Stdout)
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // log path comes from configuration
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		ws = zapcore.AddSync(file)
	}
	return newWithSyncer(level, format, ws)
}

// NewWithWriter creates a Logger writing to w. Mostly useful in tests.
func NewWithWriter(level, format string, w io.Writer) (*Logger, error) {
	return newWithSyncer(level, format, zapcore.AddSync(w))
}

func newWithSyncer(level, format string, ws zapcore.WriteSyncer) (*Logger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	if strings.EqualFold(format, "json") {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	base := zap.New(zapcore.NewCore(encoder, ws, zapLevel), zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{sugar: base.Sugar(), base: base}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	base := zap.NewNop()
	return &Logger{sugar: base.Sugar(), base: base}
}

// FromZap wraps an existing zap.Logger. A nil logger yields NewNop.
func FromZap(base *zap.Logger) *Logger {
	if base == nil {
		return NewNop()
	}
	return &Logger{sugar: base.Sugar(), base: base}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// With returns a Logger carrying additional key-value context.
func (l *Logger) With(keysAndValues ...any) *Logger {
	sugar := l.sugar.With(keysAndValues...)
	return &Logger{sugar: sugar, base: sugar.Desugar()}
}

// Named adds a name segment to the logger.
func (l *Logger) Named(name string) *Logger {
	sugar := l.sugar.Named(name)
	return &Logger{sugar: sugar, base: sugar.Desugar()}
}

// Zap exposes the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}
