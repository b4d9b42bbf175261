package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an audited action
type EventType string

const (
	EventMatchStarted       EventType = "match_started"
	EventMatchCompleted     EventType = "match_completed"
	EventMatchCached        EventType = "match_cached"
	EventMatchFailed        EventType = "match_failed"
	EventCVUploaded         EventType = "cv_uploaded"
	EventCVDeleted          EventType = "cv_deleted"
	EventCVRejected         EventType = "cv_rejected"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
)

// Event is one audit log entry. User ids are hashed before they are written.
type Event struct {
	Type      EventType
	UserID    string
	IP        string
	RequestID string
	Details   map[string]interface{}
}

// Logger writes audit events as structured zap entries
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *Logger

// Init builds the production audit logger and installs it as the default
func Init(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	defaultLogger = New(zl, serviceName, environment)
	return defaultLogger
}

// New wraps an existing zap logger
func New(zl *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{zapLogger: zl, serviceName: serviceName, environment: environment}
}

// Default returns the installed logger, creating one on first use
func Default() *Logger {
	if defaultLogger == nil {
		return Init("jobmatch-backend", environment())
	}
	return defaultLogger
}

// Nop discards every event
func Nop() *Logger {
	return New(zap.NewNop(), "", "")
}

func (l *Logger) Log(ctx context.Context, ev Event) {
	level := zapcore.InfoLevel
	switch ev.Type {
	case EventMatchFailed, EventRateLimitTriggered:
		level = zapcore.WarnLevel
	case EventUnauthorizedAccess:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(ev.Type)),
		zap.Time("at", time.Now().UTC()),
	}
	if ev.UserID != "" {
		fields = append(fields, zap.String("subject", HashValue(ev.UserID)))
	}
	if ev.IP != "" {
		fields = append(fields, zap.String("ip", ev.IP))
	}
	if ev.RequestID != "" {
		fields = append(fields, zap.String("request_id", ev.RequestID))
	}
	if len(ev.Details) > 0 {
		fields = append(fields, zap.Any("details", ev.Details))
	}

	l.zapLogger.Log(level, string(ev.Type), fields...)
}

func (l *Logger) MatchStarted(ctx context.Context, userID string, jobs int) {
	l.Log(ctx, Event{Type: EventMatchStarted, UserID: userID, Details: map[string]interface{}{"jobs": jobs}})
}

func (l *Logger) MatchCompleted(ctx context.Context, userID string, written int64, took time.Duration) {
	l.Log(ctx, Event{Type: EventMatchCompleted, UserID: userID, Details: map[string]interface{}{
		"written": written,
		"took_ms": took.Milliseconds(),
	}})
}

func (l *Logger) MatchCached(ctx context.Context, userID string) {
	l.Log(ctx, Event{Type: EventMatchCached, UserID: userID})
}

func (l *Logger) MatchFailed(ctx context.Context, userID string, err error) {
	l.Log(ctx, Event{Type: EventMatchFailed, UserID: userID, Details: map[string]interface{}{"error": err.Error()}})
}

func (l *Logger) RateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	l.Log(ctx, Event{Type: EventRateLimitTriggered, IP: ip, RequestID: requestID, Details: map[string]interface{}{"endpoint": endpoint}})
}

func (l *Logger) UnauthorizedAccess(ctx context.Context, ip, requestID, reason string) {
	l.Log(ctx, Event{Type: EventUnauthorizedAccess, IP: ip, RequestID: requestID, Details: map[string]interface{}{"reason": reason}})
}

func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// HashValue returns the first 16 hex chars of the SHA-256 of value
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func environment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
