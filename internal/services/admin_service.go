package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/pkg/logger"
)

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	GetLiveByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// AdminService handles administrator actions on the user directory
type AdminService struct {
	users         UserRepository
	approvals     ApprovalRepository
	sessions      SessionRepository
	workflow      WorkflowStore
	notifier      Notifier
	allowRedecide bool
	logger        *slog.Logger
	audit         *logger.AuditLogger
}

func NewAdminService(users UserRepository, approvals ApprovalRepository, sessions SessionRepository, workflow WorkflowStore, notifier Notifier, allowRedecide bool, log *slog.Logger, audit *logger.AuditLogger) *AdminService {
	return &AdminService{
		users:         users,
		approvals:     approvals,
		sessions:      sessions,
		workflow:      workflow,
		notifier:      notifier,
		allowRedecide: allowRedecide,
		logger:        log,
		audit:         audit,
	}
}

// ListUsers returns the full directory, newest registrations first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return users, nil
}

// Decide records an APPROVED or DENIED verdict on a registration. The user's
// status is overwritten and a new row is appended to the decision trail with
// the acting admin's id; earlier rows are never touched.
func (s *AdminService) Decide(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error) {
	if !status.Decidable() {
		return nil, models.ErrBadRequest
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load user for decision",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !s.allowRedecide && user.RegistrationStatus != models.StatusPending {
		s.logger.Info("rejecting repeat decision",
			slog.String("user_id", userID),
			slog.String("current_status", string(user.RegistrationStatus)))
		return nil, models.ErrConflict
	}

	// Status overwrite and the appended trail row commit together; a verdict
	// is never visible without its audit record.
	updated, err := s.workflow.UpdateStatusWithApproval(ctx, userID, status, actor.UserID)
	if err != nil {
		s.logger.Error("failed to record decision",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventDecision,
		ActorID:   actor.UserID,
		TargetID:  userID,
		Success:   true,
		Metadata:  map[string]string{"status": string(status)},
	})

	// TODO: call s.notifier.NotifyApplicantDecision once the applicant-facing
	// decision email copy is settled.
	s.logger.Info("decision_notification_pending",
		slog.String("user_id", userID),
		slog.String("status", string(status)))

	return updated, nil
}

// DeleteUser removes a user and, via cascade, their sessions and decision
// history. An admin cannot delete their own account.
func (s *AdminService) DeleteUser(ctx context.Context, actor *models.Identity, userID string) error {
	if actor.UserID == userID {
		s.logger.Warn("admin attempted self-deletion", slog.String("user_id", userID))
		return models.ErrBadRequest
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventUserDeleted,
		ActorID:   actor.UserID,
		TargetID:  userID,
		Success:   true,
	})

	return nil
}

// BanUser bans a user and revokes every session they hold, so the ban takes
// effect immediately rather than at next token expiry.
func (s *AdminService) BanUser(ctx context.Context, actor *models.Identity, userID string, reason *string) (*models.User, error) {
	if actor.UserID == userID {
		s.logger.Warn("admin attempted self-ban", slog.String("user_id", userID))
		return nil, models.ErrBadRequest
	}

	user, err := s.users.SetBanned(ctx, userID, true, reason)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to ban user",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	revoked, err := s.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to revoke sessions for banned user",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	auditReason := ""
	if reason != nil {
		auditReason = *reason
	}
	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventUserBanned,
		ActorID:   actor.UserID,
		TargetID:  userID,
		Success:   true,
		Reason:    auditReason,
	})

	s.logger.Info("user banned",
		slog.String("user_id", userID),
		slog.Int64("sessions_revoked", revoked))

	return user, nil
}

// UnbanUser lifts a ban. Revoked sessions stay revoked; the user signs in
// again normally.
func (s *AdminService) UnbanUser(ctx context.Context, actor *models.Identity, userID string) (*models.User, error) {
	user, err := s.users.SetBanned(ctx, userID, false, nil)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to unban user",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventUserUnbanned,
		ActorID:   actor.UserID,
		TargetID:  userID,
		Success:   true,
	})

	return user, nil
}

// ApprovalHistory returns a user's full decision trail, oldest first.
func (s *AdminService) ApprovalHistory(ctx context.Context, userID string) ([]*models.RegistrationApproval, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrInternalServer
	}

	approvals, err := s.approvals.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list approvals",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return approvals, nil
}
