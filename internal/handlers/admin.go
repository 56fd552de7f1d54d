package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-labs/gatehouse/internal/auth"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	pkghttp "github.com/gatehouse-labs/gatehouse/pkg/http"
)

// AdminServiceInterface defines the interface for administrator actions
type AdminServiceInterface interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	Decide(ctx context.Context, actor *models.Identity, userID string, status models.RegistrationStatus) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.Identity, userID string) error
	BanUser(ctx context.Context, actor *models.Identity, userID string, reason *string) (*models.User, error)
	UnbanUser(ctx context.Context, actor *models.Identity, userID string) (*models.User, error)
	ApprovalHistory(ctx context.Context, userID string) ([]*models.RegistrationApproval, error)
}

// AdminHandler handles administrator HTTP requests
type AdminHandler struct {
	service AdminServiceInterface
}

func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// UpdateStatusRequest represents the request body for a registration decision
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED DENIED"`
}

// BanRequest represents the request body for banning a user
type BanRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserListResponse(users))
}

// UpdateStatus handles PATCH /api/admin/users/{userID}/status
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	actor := auth.IdentityFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "Missing credentials")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Decide(r.Context(), actor, userID, models.RegistrationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Registration has already been decided")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid status")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}

// DeleteUser handles DELETE /api/admin/users/{userID}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	actor := auth.IdentityFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "Missing credentials")
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, userID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Cannot delete your own account")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BanUser handles POST /api/admin/users/{userID}/ban
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	actor := auth.IdentityFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "Missing credentials")
		return
	}

	// The body is optional; a bare POST bans without a recorded reason.
	var req BanRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	user, err := h.service.BanUser(r.Context(), actor, userID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Cannot ban your own account")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}

// UnbanUser handles DELETE /api/admin/users/{userID}/ban
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	actor := auth.IdentityFromContext(r)
	if actor == nil {
		pkghttp.WriteUnauthorized(w, "Missing credentials")
		return
	}

	user, err := h.service.UnbanUser(r.Context(), actor, userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}

// ApprovalHistory handles GET /api/admin/users/{userID}/approvals
func (h *AdminHandler) ApprovalHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	approvals, err := h.service.ApprovalHistory(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewApprovalListResponse(approvals))
}
