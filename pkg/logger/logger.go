// Package logger provides a zap-based application logger.
package logger

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger writes.
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// TraceIDFn extracts a trace id from a context. It returns "" when the
// context carries no active span.
type TraceIDFn func(ctx context.Context) string

// Logger writes structured JSON records and tags them with the trace id of
// the calling context.
type Logger struct {
	z       *zap.Logger
	traceID TraceIDFn
}

// New builds a Logger writing to w at the given level.
func New(w io.Writer, level Level, service string, traceIDFn TraceIDFn) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).With(zap.String("service", service))
	return &Logger{z: z, traceID: traceIDFn}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// ParseLevel maps a configuration string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debug logs at debug level. kv is a list of alternating keys and values.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.write(ctx, zapcore.DebugLevel, msg, kv)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.write(ctx, zapcore.InfoLevel, msg, kv)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.write(ctx, zapcore.WarnLevel, msg, kv)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.write(ctx, zapcore.ErrorLevel, msg, kv)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) write(ctx context.Context, lvl zapcore.Level, msg string, kv []any) {
	if l == nil || l.z == nil {
		return
	}
	ce := l.z.Check(lvl, msg)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, len(kv)/2+1)
	if l.traceID != nil && ctx != nil {
		if id := l.traceID(ctx); id != "" {
			fields = append(fields, zap.String("trace_id", id))
		}
	}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = "!badkey"
		}
		if i+1 >= len(kv) {
			fields = append(fields, zap.Any(key, nil))
			break
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	ce.Write(fields...)
}
