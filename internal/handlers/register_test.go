package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/internal/services"
	"github.com/stretchr/testify/assert"
)

func postRegister(t *testing.T, handler *RegistrationHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)
	return rec
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Name:  "New User",
		Email: "new@example.com",
		Title: "Analyst",
		Phone: "5551234567",
	}
}

func TestRegistrationHandler_Register_Success(t *testing.T) {
	mockSvc := &MockRegistrationService{
		RegisterFunc: func(ctx context.Context, input services.RegistrationInput) (*models.User, error) {
			assert.Equal(t, "new@example.com", input.Email)
			return testUser("user123", models.StatusPending), nil
		},
	}

	rec := postRegister(t, NewRegistrationHandler(mockSvc), validRegisterRequest())

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp RegisterResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user123", resp.User.ID)
	assert.Equal(t, string(models.StatusPending), resp.User.RegistrationStatus)
}

func TestRegistrationHandler_Register_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"short title", func(r *RegisterRequest) { r.Title = "X" }},
		{"short phone", func(r *RegisterRequest) { r.Phone = "12345" }},
		{"missing name", func(r *RegisterRequest) { r.Name = "" }},
	}

	mockSvc := &MockRegistrationService{
		RegisterFunc: func(ctx context.Context, input services.RegistrationInput) (*models.User, error) {
			t.Fatal("service must not be called for invalid input")
			return nil, nil
		},
	}
	handler := NewRegistrationHandler(mockSvc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(&req)

			rec := postRegister(t, handler, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegistrationHandler_Register_PendingConflict(t *testing.T) {
	mockSvc := &MockRegistrationService{
		RegisterFunc: func(ctx context.Context, input services.RegistrationInput) (*models.User, error) {
			return nil, models.ErrPendingApproval
		},
	}

	rec := postRegister(t, NewRegistrationHandler(mockSvc), validRegisterRequest())

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Pending bool `json:"isPending"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Pending)
}

func TestRegistrationHandler_Register_DecidedConflict(t *testing.T) {
	mockSvc := &MockRegistrationService{
		RegisterFunc: func(ctx context.Context, input services.RegistrationInput) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	rec := postRegister(t, NewRegistrationHandler(mockSvc), validRegisterRequest())

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Pending bool `json:"isPending"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Pending)
}

func TestRegistrationHandler_Register_ReservedEmail(t *testing.T) {
	mockSvc := &MockRegistrationService{
		RegisterFunc: func(ctx context.Context, input services.RegistrationInput) (*models.User, error) {
			return nil, models.ErrForbidden
		},
	}

	rec := postRegister(t, NewRegistrationHandler(mockSvc), validRegisterRequest())

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegistrationHandler_Register_InvalidBody(t *testing.T) {
	handler := NewRegistrationHandler(&MockRegistrationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
