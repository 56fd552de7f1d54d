package services

import (
	"context"
	"testing"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/stretchr/testify/assert"
)

func adminIdentity() *models.Identity {
	return &models.Identity{
		UserID: "admin123",
		Email:  testAdminEmail,
		Role:   models.RoleAdmin,
	}
}

func newAdminService(users *MockUserRepository, approvals *MockApprovalRepository, sessions *MockSessionRepository, workflow *MockWorkflowStore, allowRedecide bool) *AdminService {
	return NewAdminService(users, approvals, sessions, workflow, &MockNotifier{}, allowRedecide, testLogger(), testAudit())
}

func TestAdminService_Decide_Approve(t *testing.T) {
	pending := NewTestUser("user123", "user@example.com", models.StatusPending)
	decidedUser := ""
	decidedBy := ""

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return pending, nil
		},
	}
	mockWorkflow := &MockWorkflowStore{
		UpdateStatusWithApprovalFunc: func(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error) {
			decidedUser = userID
			decidedBy = approvedBy
			pending.RegistrationStatus = status
			return pending, nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, mockWorkflow, true)

	updated, err := svc.Decide(context.Background(), adminIdentity(), "user123", models.StatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.RegistrationStatus)
	assert.Equal(t, "user123", decidedUser)
	assert.Equal(t, "admin123", decidedBy)
}

func TestAdminService_Decide_RejectsPendingVerdict(t *testing.T) {
	svc := newAdminService(&MockUserRepository{}, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	updated, err := svc.Decide(context.Background(), adminIdentity(), "user123", models.StatusPending)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAdminService_Decide_UnknownUser(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	updated, err := svc.Decide(context.Background(), adminIdentity(), "ghost", models.StatusApproved)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdminService_Decide_RedecideAllowed(t *testing.T) {
	denied := NewTestUser("user123", "user@example.com", models.StatusDenied)

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return denied, nil
		},
	}
	mockWorkflow := &MockWorkflowStore{
		UpdateStatusWithApprovalFunc: func(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error) {
			denied.RegistrationStatus = status
			return denied, nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, mockWorkflow, true)

	updated, err := svc.Decide(context.Background(), adminIdentity(), "user123", models.StatusApproved)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.RegistrationStatus)
}

func TestAdminService_Decide_RedecideDisallowed(t *testing.T) {
	approved := NewTestUser("user123", "user@example.com", models.StatusApproved)

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return approved, nil
		},
	}
	mockWorkflow := &MockWorkflowStore{
		UpdateStatusWithApprovalFunc: func(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error) {
			t.Fatal("status must not change when re-deciding is disabled")
			return nil, nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, mockWorkflow, false)

	updated, err := svc.Decide(context.Background(), adminIdentity(), "user123", models.StatusDenied)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAdminService_DeleteUser_Success(t *testing.T) {
	deleted := ""

	mockUserRepo := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	err := svc.DeleteUser(context.Background(), adminIdentity(), "user123")

	assert.NoError(t, err)
	assert.Equal(t, "user123", deleted)
}

func TestAdminService_DeleteUser_SelfDeletionRejected(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			t.Fatal("self-deletion must not reach the repository")
			return nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	err := svc.DeleteUser(context.Background(), adminIdentity(), "admin123")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAdminService_BanUser_RevokesSessions(t *testing.T) {
	banned := NewTestUser("user123", "user@example.com", models.StatusApproved)
	banned.Banned = true
	revokedFor := ""

	mockUserRepo := &MockUserRepository{
		SetBannedFunc: func(ctx context.Context, id string, isBanned bool, reason *string) (*models.User, error) {
			assert.True(t, isBanned)
			return banned, nil
		},
	}
	mockSessionRepo := &MockSessionRepository{
		DeleteByUserIDFunc: func(ctx context.Context, userID string) (int64, error) {
			revokedFor = userID
			return 2, nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, mockSessionRepo, &MockWorkflowStore{}, true)

	reason := "abuse"
	user, err := svc.BanUser(context.Background(), adminIdentity(), "user123", &reason)

	assert.NoError(t, err)
	assert.True(t, user.Banned)
	assert.Equal(t, "user123", revokedFor)
}

func TestAdminService_BanUser_SelfBanRejected(t *testing.T) {
	svc := newAdminService(&MockUserRepository{}, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	user, err := svc.BanUser(context.Background(), adminIdentity(), "admin123", nil)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAdminService_UnbanUser(t *testing.T) {
	unbanned := NewTestUser("user123", "user@example.com", models.StatusApproved)

	mockUserRepo := &MockUserRepository{
		SetBannedFunc: func(ctx context.Context, id string, isBanned bool, reason *string) (*models.User, error) {
			assert.False(t, isBanned)
			assert.Nil(t, reason)
			return unbanned, nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	user, err := svc.UnbanUser(context.Background(), adminIdentity(), "user123")

	assert.NoError(t, err)
	assert.False(t, user.Banned)
}

func TestAdminService_ListUsers(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{
				NewTestUser("a", "a@example.com", models.StatusApproved),
				NewTestUser("b", "b@example.com", models.StatusPending),
			}, nil
		},
	}

	svc := newAdminService(mockUserRepo, &MockApprovalRepository{}, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	users, err := svc.ListUsers(context.Background())

	assert.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAdminService_ApprovalHistory(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser("user123", "user@example.com", models.StatusApproved), nil
		},
	}
	mockApprovalRepo := &MockApprovalRepository{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*models.RegistrationApproval, error) {
			return []*models.RegistrationApproval{
				{ID: "a1", UserID: userID, Status: models.StatusPending},
				{ID: "a2", UserID: userID, Status: models.StatusApproved},
			}, nil
		},
	}

	svc := newAdminService(mockUserRepo, mockApprovalRepo, &MockSessionRepository{}, &MockWorkflowStore{}, true)

	history, err := svc.ApprovalHistory(context.Background(), "user123")

	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, models.StatusPending, history[0].Status)
}
