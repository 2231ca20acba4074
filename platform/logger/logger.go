// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// SessionIDKey is the context key for the conversation session ID
	SessionIDKey contextKey = "session_id"
	// TraceIDKey is the context key for trace ID
	TraceIDKey contextKey = "trace_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id, session_id, and trace_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
		newLogger = newLogger.WithSessionID(sessionID)
	}

	if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("trace_id", traceID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithSessionID returns a logger with the conversation session ID attached.
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("session_id", sessionID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// TurnProcessed logs the outcome of one controller turn.
func (l *Logger) TurnProcessed(sessionID, intent string, confidence float64, latencyMs float64, toolsUsed []string) {
	l.Info("turn_processed",
		slog.String("session_id", sessionID),
		slog.String("intent", intent),
		slog.Float64("confidence", confidence),
		slog.Float64("latency_ms", latencyMs),
		slog.Any("tools_used", toolsUsed),
	)
}

// ClassifierFallback logs that the intent classifier fell back to UNCLEAR,
// or that a malicious-input pattern fired, for offline pattern-table tuning.
func (l *Logger) ClassifierFallback(sessionID, utterance, reason string) {
	l.Warn("classifier_fallback",
		slog.String("session_id", sessionID),
		slog.String("utterance", utterance),
		slog.String("reason", reason),
	)
}

// ToolError logs a failed or degraded tool invocation (timeout, unavailable,
// or an unexpected error) without leaking it to the caller.
func (l *Logger) ToolError(sessionID, tool string, err error) {
	l.Error("tool_error",
		slog.String("session_id", sessionID),
		slog.String("tool", tool),
		slog.String("error", err.Error()),
	)
}

// SessionEvicted logs that a session was swept from memory after its idle
// timeout elapsed.
func (l *Logger) SessionEvicted(sessionID string, idleFor float64) {
	l.Info("session_evicted",
		slog.String("session_id", sessionID),
		slog.Float64("idle_seconds", idleFor),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
