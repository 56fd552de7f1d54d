package handlers

import (
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/models"
)

// UserResponse is the outward shape of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Title              string     `json:"title"`
	Phone              string     `json:"phone"`
	Role               string     `json:"role"`
	RegistrationStatus string     `json:"registrationStatus"`
	Banned             bool       `json:"banned"`
	BannedAt           *time.Time `json:"bannedAt,omitempty"`
	BannedReason       *string    `json:"bannedReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
}

func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		Title:              user.Title,
		Phone:              user.Phone,
		Role:               string(user.Role),
		RegistrationStatus: string(user.RegistrationStatus),
		Banned:             user.Banned,
		BannedAt:           user.BannedAt,
		BannedReason:       user.BannedReason,
		CreatedAt:          user.CreatedAt,
		LastLoginAt:        user.LastLoginAt,
	}
}

func NewUserListResponse(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// ApprovalResponse is one row of a user's decision trail.
type ApprovalResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	ApprovedBy *string   `json:"approvedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewApprovalListResponse(approvals []*models.RegistrationApproval) []ApprovalResponse {
	out := make([]ApprovalResponse, 0, len(approvals))
	for _, a := range approvals {
		out = append(out, ApprovalResponse{
			ID:         a.ID,
			UserID:     a.UserID,
			Status:     string(a.Status),
			ApprovedBy: a.ApprovedBy,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out
}
