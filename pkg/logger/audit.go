package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventRegistration       = "registration"
	EventRegistrationRepeat = "registration_repeat"
	EventDecision           = "decision"
	EventUserDeleted        = "user_deleted"
	EventUserBanned         = "user_banned"
	EventUserUnbanned       = "user_unbanned"
	EventSignIn             = "sign_in"
	EventSignOut            = "sign_out"
)

// AuditEvent captures one security-relevant action for the audit log.
type AuditEvent struct {
	EventType string
	ActorID   string // acting admin, empty for self-service events
	TargetID  string
	Success   bool
	Reason    string
	Metadata  map[string]string
}

// AuditLogger writes structured audit records through slog. The approval
// trail in the database is the durable record; this stream exists for
// operational visibility.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

func (al *AuditLogger) Log(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "approval"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.ActorID != "" {
		attrs = append(attrs, slog.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		attrs = append(attrs, slog.String("target_id", event.TargetID))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
