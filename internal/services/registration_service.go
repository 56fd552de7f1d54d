package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetBanned(ctx context.Context, id string, banned bool, reason *string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// ApprovalRepository defines the interface for the decision trail
type ApprovalRepository interface {
	Create(ctx context.Context, approval *models.RegistrationApproval) (*models.RegistrationApproval, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.RegistrationApproval, error)
}

// WorkflowStore performs the paired user-and-approval writes that must land
// together or not at all.
type WorkflowStore interface {
	CreateUserWithPendingApproval(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatusWithApproval(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error)
}

// RegistrationInput carries the applicant-supplied fields of a registration
type RegistrationInput struct {
	Name  string
	Email string
	Title string
	Phone string
}

// RegistrationService handles applicant self-registration
type RegistrationService struct {
	users      UserRepository
	workflow   WorkflowStore
	notifier   Notifier
	adminEmail string
	logger     *slog.Logger
	audit      *logger.AuditLogger
}

func NewRegistrationService(users UserRepository, workflow WorkflowStore, notifier Notifier, adminEmail string, log *slog.Logger, audit *logger.AuditLogger) *RegistrationService {
	return &RegistrationService{
		users:      users,
		workflow:   workflow,
		notifier:   notifier,
		adminEmail: strings.ToLower(adminEmail),
		logger:     log,
		audit:      audit,
	}
}

// Register creates a pending account for a new applicant. A repeat attempt
// while an earlier registration is still pending sends the reviewing admin a
// reminder and reports ErrPendingApproval; a repeat against a decided account
// reports plain ErrConflict.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// The administrator address is provisioned at startup and can never be
	// claimed through self-registration.
	if email == s.adminEmail {
		s.logger.Warn("registration attempt against the reserved admin address")
		return nil, models.ErrForbidden
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up existing user",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if existing != nil {
		return nil, s.handleRepeat(ctx, existing)
	}

	// The user row and its opening PENDING approval land in one transaction;
	// a failure on either side rolls back both.
	user, err := s.workflow.CreateUserWithPendingApproval(ctx, &models.User{
		Email: email,
		Name:  strings.TrimSpace(input.Name),
		Title: strings.TrimSpace(input.Title),
		Phone: strings.TrimSpace(input.Phone),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent registration for the same
			// address; the unique index is the arbiter.
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Notification failures do not fail the registration; the account and
	// its pending approval are already durable.
	if err := s.notifier.NotifyAdminOfNewRegistration(ctx, s.adminEmail, user); err != nil {
		s.logger.Error("failed to notify admin of registration",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}
	if err := s.notifier.NotifyApplicantConfirmation(ctx, user); err != nil {
		s.logger.Error("failed to send applicant confirmation",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}

	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventRegistration,
		TargetID:  user.ID,
		Success:   true,
	})

	s.logger.Info("registration created",
		slog.String("user_id", user.ID),
		slog.String("email", logger.SanitizedEmail(user.Email)))

	return user, nil
}

func (s *RegistrationService) handleRepeat(ctx context.Context, existing *models.User) error {
	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventRegistrationRepeat,
		TargetID:  existing.ID,
		Success:   false,
		Reason:    string(existing.RegistrationStatus),
	})

	if existing.RegistrationStatus == models.StatusPending {
		if err := s.notifier.NotifyAdminReminder(ctx, s.adminEmail, existing); err != nil {
			s.logger.Error("failed to send admin reminder",
				slog.String("user_id", existing.ID),
				slog.Any("error", err))
		}
		return models.ErrPendingApproval
	}

	return models.ErrConflict
}
