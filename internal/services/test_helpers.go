package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/pkg/logger"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc         func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	ListFunc            func(ctx context.Context) ([]*models.User, error)
	CreateFunc          func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatusFunc    func(ctx context.Context, id string, status models.RegistrationStatus) (*models.User, error)
	UpdateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
	SetBannedFunc       func(ctx context.Context, id string, banned bool, reason *string) (*models.User, error)
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.User, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *MockUserRepository) SetBanned(ctx context.Context, id string, banned bool, reason *string) (*models.User, error) {
	if m.SetBannedFunc != nil {
		return m.SetBannedFunc(ctx, id, banned, reason)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockApprovalRepository implements ApprovalRepository for testing
type MockApprovalRepository struct {
	CreateFunc       func(ctx context.Context, approval *models.RegistrationApproval) (*models.RegistrationApproval, error)
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*models.RegistrationApproval, error)
}

func (m *MockApprovalRepository) Create(ctx context.Context, approval *models.RegistrationApproval) (*models.RegistrationApproval, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, approval)
	}
	return approval, nil
}

func (m *MockApprovalRepository) ListByUserID(ctx context.Context, userID string) ([]*models.RegistrationApproval, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return []*models.RegistrationApproval{}, nil
}

// MockWorkflowStore implements WorkflowStore for testing
type MockWorkflowStore struct {
	CreateUserWithPendingApprovalFunc func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateStatusWithApprovalFunc      func(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error)
}

func (m *MockWorkflowStore) CreateUserWithPendingApproval(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateUserWithPendingApprovalFunc != nil {
		return m.CreateUserWithPendingApprovalFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockWorkflowStore) UpdateStatusWithApproval(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error) {
	if m.UpdateStatusWithApprovalFunc != nil {
		return m.UpdateStatusWithApprovalFunc(ctx, userID, status, approvedBy)
	}
	return nil, models.ErrInternalServer
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc         func(ctx context.Context, session *models.Session) (*models.Session, error)
	GetLiveByTokenFunc func(ctx context.Context, token string) (*models.Session, error)
	DeleteByTokenFunc  func(ctx context.Context, token string) error
	DeleteByUserIDFunc func(ctx context.Context, userID string) (int64, error)
	DeleteExpiredFunc  func(ctx context.Context) (int64, error)
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return session, nil
}

func (m *MockSessionRepository) GetLiveByToken(ctx context.Context, token string) (*models.Session, error) {
	if m.GetLiveByTokenFunc != nil {
		return m.GetLiveByTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if m.DeleteByTokenFunc != nil {
		return m.DeleteByTokenFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	NotifyAdminOfNewRegistrationFunc func(ctx context.Context, adminEmail string, applicant *models.User) error
	NotifyApplicantConfirmationFunc  func(ctx context.Context, applicant *models.User) error
	NotifyAdminReminderFunc          func(ctx context.Context, adminEmail string, applicant *models.User) error
	NotifyApplicantDecisionFunc      func(ctx context.Context, applicant *models.User, status models.RegistrationStatus) error
	SendMagicLinkFunc                func(ctx context.Context, email, token string, expiresAt time.Time) error
}

func (m *MockNotifier) NotifyAdminOfNewRegistration(ctx context.Context, adminEmail string, applicant *models.User) error {
	if m.NotifyAdminOfNewRegistrationFunc != nil {
		return m.NotifyAdminOfNewRegistrationFunc(ctx, adminEmail, applicant)
	}
	return nil
}

func (m *MockNotifier) NotifyApplicantConfirmation(ctx context.Context, applicant *models.User) error {
	if m.NotifyApplicantConfirmationFunc != nil {
		return m.NotifyApplicantConfirmationFunc(ctx, applicant)
	}
	return nil
}

func (m *MockNotifier) NotifyAdminReminder(ctx context.Context, adminEmail string, applicant *models.User) error {
	if m.NotifyAdminReminderFunc != nil {
		return m.NotifyAdminReminderFunc(ctx, adminEmail, applicant)
	}
	return nil
}

func (m *MockNotifier) NotifyApplicantDecision(ctx context.Context, applicant *models.User, status models.RegistrationStatus) error {
	if m.NotifyApplicantDecisionFunc != nil {
		return m.NotifyApplicantDecisionFunc(ctx, applicant, status)
	}
	return nil
}

func (m *MockNotifier) SendMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error {
	if m.SendMagicLinkFunc != nil {
		return m.SendMagicLinkFunc(ctx, email, token, expiresAt)
	}
	return nil
}

// MockTokenCodec implements TokenCodec for testing
type MockTokenCodec struct {
	SignSessionFunc   func(userID, email string, role models.Role) (string, error)
	SignMagicLinkFunc func(userID, email string) (string, error)
	VerifyFunc        func(tokenString string) (*models.TokenClaims, error)
}

func (m *MockTokenCodec) SignSession(userID, email string, role models.Role) (string, error) {
	if m.SignSessionFunc != nil {
		return m.SignSessionFunc(userID, email, role)
	}
	return "session-token", nil
}

func (m *MockTokenCodec) SignMagicLink(userID, email string) (string, error) {
	if m.SignMagicLinkFunc != nil {
		return m.SignMagicLinkFunc(userID, email)
	}
	return "magic-link-token", nil
}

func (m *MockTokenCodec) Verify(tokenString string) (*models.TokenClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(tokenString)
	}
	return nil, models.ErrInvalidToken
}

// NewTestUser creates a user with sensible defaults for tests
func NewTestUser(id, email string, status models.RegistrationStatus) *models.User {
	return &models.User{
		ID:                 id,
		Email:              email,
		Name:               "Test User",
		Title:              "Engineer",
		Phone:              "5551234567",
		Role:               models.RoleUser,
		RegistrationStatus: status,
		CreatedAt:          time.Now(),
	}
}

// testLogger returns a logger that discards output during tests
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAudit returns an audit logger wired to the discard logger
func testAudit() *logger.AuditLogger {
	return logger.NewAuditLogger(testLogger())
}
