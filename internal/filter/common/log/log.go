// Package log is the process-wide structured logger shared by the daemon and
// the CLI.
//
// Entries carry a flat field map. Long-running components set FieldComponent
// ("scanner", "watcher", "relevance", "browser", "control", "stats") so a
// single pass can be followed across them. Scan entries
// add FieldPage with the page type, and failures go under FieldError, which
// zap encodes as a structured error.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Well-known field keys.
const (
	FieldComponent = "component"
	FieldPage      = "page"
	FieldError     = "error"
)

// Logger is implemented by the zap-backed default, the no-op logger the
// tests use, and any recorder a test installs with SetLogger.
type Logger interface {
	Info(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Panic(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
}

// JSON at info until tubefilterd or tubefilter calls Configure.
var global Logger = newZapLogger(false, zapcore.InfoLevel)

// SetLogger installs l as the process logger.
func SetLogger(l Logger) { global = l }

// GetLogger is what components capture when their Options carry no Logger.
func GetLogger() Logger { return global }

// Configure applies the log_level and env settings. "prod" writes JSON lines;
// anything else writes colored console output for a terminal.
func Configure(env, level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	global = newZapLogger(env != "prod", lvl)
	return nil
}

// Sync flushes the zap core before the daemon exits. Loggers without a buffer
// report nil.
func Sync() error {
	if s, ok := global.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func Info(fields map[string]any, msg string)  { global.Info(fields, msg) }
func Error(fields map[string]any, msg string) { global.Error(fields, msg) }
func Debug(fields map[string]any, msg string) { global.Debug(fields, msg) }
func Warn(fields map[string]any, msg string)  { global.Warn(fields, msg) }
func Panic(fields map[string]any, msg string) { global.Panic(fields, msg) }
func Fatal(fields map[string]any, msg string) { global.Fatal(fields, msg) }

// With copies fields and tags the copy with component.
func With(component string, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldComponent] = component
	return out
}

type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(console bool, level zapcore.Level) Logger {
	cfg := zap.NewProductionConfig()
	if console {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"

	base, err := cfg.Build()
	if err != nil {
		return &noopLogger{}
	}
	return &zapLogger{base: base}
}

// write converts fields only when the level is enabled. Panic and Fatal
// entries are always checked in, so they still panic or exit.
func (l *zapLogger) write(lvl zapcore.Level, fields map[string]any, msg string) {
	if ce := l.base.Check(lvl, msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *zapLogger) Info(f map[string]any, msg string)  { l.write(zapcore.InfoLevel, f, msg) }
func (l *zapLogger) Error(f map[string]any, msg string) { l.write(zapcore.ErrorLevel, f, msg) }
func (l *zapLogger) Debug(f map[string]any, msg string) { l.write(zapcore.DebugLevel, f, msg) }
func (l *zapLogger) Warn(f map[string]any, msg string)  { l.write(zapcore.WarnLevel, f, msg) }
func (l *zapLogger) Panic(f map[string]any, msg string) { l.write(zapcore.PanicLevel, f, msg) }
func (l *zapLogger) Fatal(f map[string]any, msg string) { l.write(zapcore.FatalLevel, f, msg) }

func (l *zapLogger) Sync() error { return l.base.Sync() }

func zapFields(m map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(m))
	for k, v := range m {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

type noopLogger struct{}

func (*noopLogger) Info(map[string]any, string)  {}
func (*noopLogger) Error(map[string]any, string) {}
func (*noopLogger) Debug(map[string]any, string) {}
func (*noopLogger) Warn(map[string]any, string)  {}
func (*noopLogger) Panic(map[string]any, string) {}
func (*noopLogger) Fatal(map[string]any, string) {}

// NewNoopLogger discards every entry, Panic and Fatal included.
func NewNoopLogger() Logger { return &noopLogger{} }
