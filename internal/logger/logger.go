package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey struct{}

var (
	globalMutex  sync.RWMutex
	globalLogger *zap.Logger

	// globalLevel is shared by every logger built through New,
	// so SetLevel takes effect everywhere at once.
	globalLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	globalLogger = New(globalLevel)
}

// New creates a logger with the given level enabler writing to stderr.
// A nil level falls back to the process-wide level.
func New(level zapcore.LevelEnabler) *zap.Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput creates a logger with the given level enabler writing to w.
// The UI swaps the global logger to a file-backed one while it owns the terminal.
func NewWithOutput(level zapcore.LevelEnabler, w io.Writer) *zap.Logger {
	if level == nil {
		level = globalLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core)
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	globalMutex.RLock()
	defer globalMutex.RUnlock()

	return globalLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *zap.Logger) {
	globalMutex.Lock()
	defer globalMutex.Unlock()

	globalLogger = l
}

// Level returns the current process-wide logging level.
func Level() zapcore.Level {
	return globalLevel.Level()
}

// SetLevel changes the process-wide logging level.
func SetLevel(level zapcore.Level) {
	globalLevel.SetLevel(level)
}

// IsDebugLevel reports whether debug records are currently emitted.
func IsDebugLevel() bool {
	return globalLevel.Enabled(zapcore.DebugLevel)
}

// ParseLogLevel converts a string into a zapcore.Level.
// The input is trimmed and case-insensitive.
// Unknown values return InfoLevel and false.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// ToContext attaches a logger to the context.
// Log functions below prefer it over the global one,
// so callers can carry request- or worker-scoped fields.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func fromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	return Logger()
}

// Debug logs a message at debug level.
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	fromContext(ctx).Debug(msg, fields...)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Debugf(format, args...)
}

// DebugKV logs a message at debug level with alternating keys and values.
func DebugKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Debugw(msg, kvs...)
}

// Info logs a message at info level.
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	fromContext(ctx).Info(msg, fields...)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Infof(format, args...)
}

// InfoKV logs a message at info level with alternating keys and values.
func InfoKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Infow(msg, kvs...)
}

// Warn logs a message at warn level.
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	fromContext(ctx).Warn(msg, fields...)
}

// Warnf logs a formatted message at warn level.
func Warnf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Warnf(format, args...)
}

// WarnKV logs a message at warn level with alternating keys and values.
func WarnKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Warnw(msg, kvs...)
}

// Error logs a message at error level.
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	fromContext(ctx).Error(msg, fields...)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Errorf(format, args...)
}

// ErrorKV logs a message at error level with alternating keys and values.
func ErrorKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Errorw(msg, kvs...)
}

// Panic logs a message at panic level, then panics.
func Panic(ctx context.Context, msg string, fields ...zap.Field) {
	fromContext(ctx).Panic(msg, fields...)
}

// Panicf logs a formatted message at panic level, then panics.
func Panicf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Panicf(format, args...)
}

// PanicKV logs a message at panic level with alternating keys and values, then panics.
func PanicKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Panicw(msg, kvs...)
}

// Fatal logs a message at fatal level, then exits.
func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	fromContext(ctx).Fatal(msg, fields...)
}

// Fatalf logs a formatted message at fatal level, then exits.
func Fatalf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Sugar().Fatalf(format, args...)
}

// FatalKV logs a message at fatal level with alternating keys and values, then exits.
func FatalKV(ctx context.Context, msg string, kvs ...any) {
	fromContext(ctx).Sugar().Fatalw(msg, kvs...)
}
