package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/stretchr/testify/assert"
)

func adminActor() *models.Identity {
	return &models.Identity{
		UserID: "admin123",
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
	}
}

// adminRequest builds a request with the userID route param and an admin
// identity already in context.
func adminRequest(method, target, userID string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", userID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	return withIdentity(req, adminActor())
}

func TestAdminHandler_ListUsers(t *testing.T) {
	mockSvc := &MockAdminService{
		ListUsersFunc: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{
				testUser("a", models.StatusApproved),
				testUser("b", models.StatusPending),
			}, nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), adminActor())
	rec := httptest.NewRecorder()
	handler.ListUsers(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var users []UserResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestAdminHandler_UpdateStatus_Approve(t *testing.T) {
	var decidedStatus models.RegistrationStatus

	mockSvc := &MockAdminService{
		DecideFunc: func(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error) {
			decidedStatus = status
			assert.Equal(t, "admin123", actor.UserID)
			assert.Equal(t, "user123", userID)
			user := testUser(userID, status)
			return user, nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	body, _ := json.Marshal(UpdateStatusRequest{Status: "APPROVED"})
	req := adminRequest(http.MethodPatch, "/api/admin/users/user123/status", "user123", body)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusApproved, decidedStatus)
}

func TestAdminHandler_UpdateStatus_RejectsInvalidStatus(t *testing.T) {
	mockSvc := &MockAdminService{
		DecideFunc: func(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error) {
			t.Fatal("service must not be called for an invalid status")
			return nil, nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	for _, status := range []string{"PENDING", "pending", "BOGUS", ""} {
		body, _ := json.Marshal(UpdateStatusRequest{Status: status})
		req := adminRequest(http.MethodPatch, "/api/admin/users/user123/status", "user123", body)
		rec := httptest.NewRecorder()
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "status %q", status)
	}
}

func TestAdminHandler_UpdateStatus_UserNotFound(t *testing.T) {
	mockSvc := &MockAdminService{
		DecideFunc: func(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := NewAdminHandler(mockSvc)

	body, _ := json.Marshal(UpdateStatusRequest{Status: "DENIED"})
	req := adminRequest(http.MethodPatch, "/api/admin/users/ghost/status", "ghost", body)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_UpdateStatus_AlreadyDecided(t *testing.T) {
	mockSvc := &MockAdminService{
		DecideFunc: func(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewAdminHandler(mockSvc)

	body, _ := json.Marshal(UpdateStatusRequest{Status: "APPROVED"})
	req := adminRequest(http.MethodPatch, "/api/admin/users/user123/status", "user123", body)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminHandler_DeleteUser_Success(t *testing.T) {
	deleted := ""
	mockSvc := &MockAdminService{
		DeleteUserFunc: func(ctx context.Context, actor *models.Identity, userID string) error {
			deleted = userID
			return nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	req := adminRequest(http.MethodDelete, "/api/admin/users/user123", "user123", nil)
	rec := httptest.NewRecorder()
	handler.DeleteUser(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user123", deleted)
}

func TestAdminHandler_DeleteUser_Self(t *testing.T) {
	mockSvc := &MockAdminService{
		DeleteUserFunc: func(ctx context.Context, actor *models.Identity, userID string) error {
			return models.ErrBadRequest
		},
	}
	handler := NewAdminHandler(mockSvc)

	req := adminRequest(http.MethodDelete, "/api/admin/users/admin123", "admin123", nil)
	rec := httptest.NewRecorder()
	handler.DeleteUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_BanUser_WithReason(t *testing.T) {
	var gotReason *string
	mockSvc := &MockAdminService{
		BanUserFunc: func(ctx context.Context, actor *models.Identity, userID string, reason *string) (*models.User, error) {
			gotReason = reason
			user := testUser(userID, models.StatusApproved)
			user.Banned = true
			return user, nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	body, _ := json.Marshal(map[string]string{"reason": "abuse"})
	req := adminRequest(http.MethodPost, "/api/admin/users/user123/ban", "user123", body)
	rec := httptest.NewRecorder()
	handler.BanUser(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, gotReason)
	assert.Equal(t, "abuse", *gotReason)

	var resp UserResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Banned)
}

func TestAdminHandler_UnbanUser(t *testing.T) {
	mockSvc := &MockAdminService{
		UnbanUserFunc: func(ctx context.Context, actor *models.Identity, userID string) (*models.User, error) {
			return testUser(userID, models.StatusApproved), nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	req := adminRequest(http.MethodDelete, "/api/admin/users/user123/ban", "user123", nil)
	rec := httptest.NewRecorder()
	handler.UnbanUser(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHandler_ApprovalHistory(t *testing.T) {
	mockSvc := &MockAdminService{
		ApprovalHistoryFunc: func(ctx context.Context, userID string) ([]*models.RegistrationApproval, error) {
			approver := "admin@example.com"
			return []*models.RegistrationApproval{
				{ID: "a1", UserID: userID, Status: models.StatusPending},
				{ID: "a2", UserID: userID, Status: models.StatusApproved, ApprovedBy: &approver},
			}, nil
		},
	}
	handler := NewAdminHandler(mockSvc)

	req := adminRequest(http.MethodGet, "/api/admin/users/user123/approvals", "user123", nil)
	rec := httptest.NewRecorder()
	handler.ApprovalHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var history []ApprovalResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 2)
	assert.Nil(t, history[0].ApprovedBy)
	assert.NotNil(t, history[1].ApprovedBy)
}

func TestAdminHandler_MissingIdentity(t *testing.T) {
	handler := NewAdminHandler(&MockAdminService{})

	body, _ := json.Marshal(UpdateStatusRequest{Status: "APPROVED"})
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/user123/status", bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", "user123")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
