package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/internal/services"
	pkghttp "github.com/gatehouse-labs/gatehouse/pkg/http"
)

// RegistrationServiceInterface defines the interface for registration logic
type RegistrationServiceInterface interface {
	Register(ctx context.Context, input services.RegistrationInput) (*models.User, error)
}

// RegistrationHandler handles applicant self-registration requests
type RegistrationHandler struct {
	service RegistrationServiceInterface
}

func NewRegistrationHandler(service RegistrationServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Title string `json:"title" validate:"required,min=2"`
	Phone string `json:"phone" validate:"required,min=10"`
}

// RegisterResponse confirms a registration was accepted for review
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// Register handles POST /api/register
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), services.RegistrationInput{
		Name:  req.Name,
		Email: req.Email,
		Title: req.Title,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPendingApproval):
			pkghttp.WritePendingConflict(w, "Your registration is still awaiting approval. The administrator has been reminded.")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Cannot register with this email")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Message: "Registration received and awaiting approval",
		User:    NewUserResponse(user),
	})
}
