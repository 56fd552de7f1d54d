package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/auth"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/internal/services"
)

// MockRegistrationService implements RegistrationServiceInterface for testing
type MockRegistrationService struct {
	RegisterFunc func(ctx context.Context, input services.RegistrationInput) (*models.User, error)
}

func (m *MockRegistrationService) Register(ctx context.Context, input services.RegistrationInput) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	ListUsersFunc       func(ctx context.Context) ([]*models.User, error)
	DecideFunc          func(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error)
	DeleteUserFunc      func(ctx context.Context, actor *models.Identity, userID string) error
	BanUserFunc         func(ctx context.Context, actor *models.Identity, userID string, reason *string) (*models.User, error)
	UnbanUserFunc       func(ctx context.Context, actor *models.Identity, userID string) (*models.User, error)
	ApprovalHistoryFunc func(ctx context.Context, userID string) ([]*models.RegistrationApproval, error)
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockAdminService) Decide(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error) {
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, actor, userID, status)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actor *models.Identity, userID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, actor, userID)
	}
	return nil
}

func (m *MockAdminService) BanUser(ctx context.Context, actor *models.Identity, userID string, reason *string) (*models.User, error) {
	if m.BanUserFunc != nil {
		return m.BanUserFunc(ctx, actor, userID, reason)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminService) UnbanUser(ctx context.Context, actor *models.Identity, userID string) (*models.User, error) {
	if m.UnbanUserFunc != nil {
		return m.UnbanUserFunc(ctx, actor, userID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminService) ApprovalHistory(ctx context.Context, userID string) ([]*models.RegistrationApproval, error) {
	if m.ApprovalHistoryFunc != nil {
		return m.ApprovalHistoryFunc(ctx, userID)
	}
	return []*models.RegistrationApproval{}, nil
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignInFunc          func(ctx context.Context, email, password string) (*services.SignInResult, error)
	VerifyMagicLinkFunc func(ctx context.Context, tokenString string) (*services.SignInResult, error)
	LogoutFunc          func(ctx context.Context, token string) error
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*services.SignInResult, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) VerifyMagicLink(ctx context.Context, tokenString string) (*services.SignInResult, error) {
	if m.VerifyMagicLinkFunc != nil {
		return m.VerifyMagicLinkFunc(ctx, tokenString)
	}
	return nil, models.ErrInvalidToken
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// withIdentity injects an identity into the request context the way the
// authentication middleware would.
func withIdentity(r *http.Request, identity *models.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), auth.IdentityContextKey, identity)
	return r.WithContext(ctx)
}

// testUser builds a user for handler tests
func testUser(id string, status models.RegistrationStatus) *models.User {
	return &models.User{
		ID:                 id,
		Email:              id + "@example.com",
		Name:               "Test User",
		Title:              "Engineer",
		Phone:              "5551234567",
		Role:               models.RoleUser,
		RegistrationStatus: status,
		CreatedAt:          time.Now(),
	}
}
