package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Level represents log level
type Level = slog.Level

const (
	DEBUG = slog.LevelDebug
	INFO  = slog.LevelInfo
	WARN  = slog.LevelWarn
	ERROR = slog.LevelError
)

type ctxKey string

const (
	// RequestIDKey is the context key carrying the per-request trace id
	RequestIDKey ctxKey = "requestID"
	// UserIDKey is the context key carrying the signed-in user id
	UserIDKey ctxKey = "userID"
)

// Config holds logger configuration
type Config struct {
	Level       Level
	Output      io.Writer
	JSONFormat  bool
	EnableColor bool
	ShowCaller  bool
	TimeFormat  string
	ServiceName string
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	level := INFO
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level = parseLevel(lvl)
	}

	return &Config{
		Level:       level,
		Output:      os.Stderr,
		JSONFormat:  os.Getenv("LOG_FORMAT") == "json",
		EnableColor: os.Getenv("LOG_COLOR") != "false",
		ShowCaller:  true,
		TimeFormat:  time.RFC1123Z,
		ServiceName: os.Getenv("SERVICE_NAME"),
	}
}

// Logger is a thin field-carrying wrapper around slog
type Logger struct {
	sl *slog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a new logger with given config
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	var h slog.Handler
	if config.JSONFormat {
		h = slog.NewJSONHandler(config.Output, &slog.HandlerOptions{
			Level:     config.Level,
			AddSource: config.ShowCaller,
		})
	} else {
		h = tint.NewHandler(config.Output, &tint.Options{
			Level:      config.Level,
			TimeFormat: config.TimeFormat,
			AddSource:  config.ShowCaller,
			NoColor:    !config.EnableColor,
		})
	}

	sl := slog.New(h)
	if config.ServiceName != "" {
		sl = sl.With("service", config.ServiceName)
	}
	return &Logger{sl: sl}
}

// Default returns the default logger singleton
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(nil)
	})
	return defaultLogger
}

// SetDefault replaces the default logger and slog's default
func SetDefault(l *Logger) {
	once.Do(func() {})
	defaultLogger = l
	slog.SetDefault(l.sl)
}

// With creates a child logger with an additional field
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{sl: l.sl.With(key, value)}
}

// WithFields creates a child logger with multiple additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{sl: l.sl.With(args...)}
}

// WithError adds error field to logger
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With("error", err.Error())
}

// WithContext extracts fields from context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	out := l
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		out = out.With("request_id", requestID)
	}
	if userID, ok := ctx.Value(UserIDKey).(int); ok && userID > 0 {
		out = out.With("user_id", userID)
	}
	return out
}

// Log methods

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	if !l.sl.Enabled(context.Background(), level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	// skip runtime.Callers, log and the exported wrapper
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	_ = l.sl.Handler().Handle(context.Background(), r)
}

// ============================================================
// Request Logger - outbound REST call logging
// ============================================================

// RequestLog represents one call to the event service
type RequestLog struct {
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	RequestID string
	Error     string
}

// LogRequest logs an outbound HTTP request
func (l *Logger) LogRequest(req RequestLog) {
	level := DEBUG
	if req.Error != "" || req.Status >= 500 {
		level = ERROR
	} else if req.Status >= 400 {
		level = WARN
	}

	fields := map[string]interface{}{
		"method":      req.Method,
		"path":        req.Path,
		"status":      req.Status,
		"duration_ms": req.Duration.Milliseconds(),
	}
	if req.RequestID != "" {
		fields["request_id"] = req.RequestID
	}
	if req.Error != "" {
		fields["error"] = req.Error
	}

	l.WithFields(fields).log(level, "%s %s -> %d (%s)", req.Method, req.Path, req.Status, req.Duration)
}

// ============================================================
// Business Event Logger
// ============================================================

// EventLog represents a user-facing workflow outcome
type EventLog struct {
	Event    string
	UserID   int
	EntityID int
	Entity   string
	Action   string
	Success  bool
	Metadata map[string]interface{}
	Error    string
}

// LogEvent logs a workflow outcome
func (l *Logger) LogEvent(evt EventLog) {
	level := INFO
	if !evt.Success {
		level = ERROR
	}

	fields := map[string]interface{}{
		"event":     evt.Event,
		"action":    evt.Action,
		"entity":    evt.Entity,
		"entity_id": evt.EntityID,
		"success":   evt.Success,
	}
	if evt.UserID > 0 {
		fields["user_id"] = evt.UserID
	}
	for k, v := range evt.Metadata {
		fields[k] = v
	}
	if evt.Error != "" {
		fields["error"] = evt.Error
	}

	l.WithFields(fields).log(level, "[%s] %s %s (ID: %d)", evt.Event, evt.Action, evt.Entity, evt.EntityID)
}

// ============================================================
// Helper functions
// ============================================================

func parseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// ============================================================
// Package-level convenience functions
// ============================================================

func Debug(msg string, args ...interface{}) { Default().Debug(msg, args...) }
func Info(msg string, args ...interface{})  { Default().Info(msg, args...) }
func Warn(msg string, args ...interface{})  { Default().Warn(msg, args...) }
func Error(msg string, args ...interface{}) { Default().Error(msg, args...) }

func With(key string, value interface{}) *Logger       { return Default().With(key, value) }
func WithFields(fields map[string]interface{}) *Logger { return Default().WithFields(fields) }
func WithError(err error) *Logger                      { return Default().WithError(err) }
func WithContext(ctx context.Context) *Logger          { return Default().WithContext(ctx) }
