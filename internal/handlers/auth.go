package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/auth"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/internal/services"
	pkghttp "github.com/gatehouse-labs/gatehouse/pkg/http"
)

// AuthServiceInterface defines the interface for sign-in logic
type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*services.SignInResult, error)
	VerifyMagicLink(ctx context.Context, tokenString string) (*services.SignInResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles sign-in, magic-link verification and logout
type AuthHandler struct {
	service       AuthServiceInterface
	cookieConfig  auth.CookieConfig
	sessionExpiry time.Duration
	signInPath    string
	reportPath    string
}

func NewAuthHandler(service AuthServiceInterface, cookieConfig auth.CookieConfig, sessionExpiry time.Duration, signInPath, reportPath string) *AuthHandler {
	return &AuthHandler{
		service:       service,
		cookieConfig:  cookieConfig,
		sessionExpiry: sessionExpiry,
		signInPath:    signInPath,
		reportPath:    reportPath,
	}
}

// SignInRequest represents the request body for sign-in. Password is only
// meaningful for the provisioned admin account.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty"`
}

// SignInResponse represents a completed password sign-in
type SignInResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MagicLinkResponse confirms a sign-in link was emailed
type MagicLinkResponse struct {
	Message string `json:"message"`
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrBanned):
			pkghttp.WriteForbidden(w, "This account has been banned")
		case errors.Is(err, models.ErrNotApproved):
			pkghttp.WriteForbidden(w, "This account has not been approved")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	if result.MagicLinkSent {
		pkghttp.WriteJSON(w, http.StatusOK, MagicLinkResponse{
			Message: "Check your email for a sign-in link",
		})
		return
	}

	auth.SetAuthCookie(w, result.Token, h.sessionExpiry, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, SignInResponse{
		Token: result.Token,
		User:  NewUserResponse(result.User),
	})
}

// Verify handles GET /api/auth/verify?token=...&from=...
//
// This endpoint is clicked from an email, so failures redirect back to the
// sign-in page instead of returning JSON. On success the session cookie is
// set and the browser is sent to its destination with auth=callback appended
// so the perimeter gate lets the very next request through.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.redirectSignIn(w, r, "missing-token")
		return
	}

	result, err := h.service.VerifyMagicLink(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTokenExpired):
			h.redirectSignIn(w, r, "link-expired")
		case errors.Is(err, models.ErrInvalidToken):
			h.redirectSignIn(w, r, "invalid-link")
		case errors.Is(err, models.ErrBanned), errors.Is(err, models.ErrNotApproved):
			h.redirectSignIn(w, r, "account-not-allowed")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetAuthCookie(w, result.Token, h.sessionExpiry, h.cookieConfig)

	http.Redirect(w, r, h.destinationURL(r.URL.Query().Get("from")), http.StatusFound)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractToken(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
	}

	auth.ClearAuthCookie(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

func (h *AuthHandler) redirectSignIn(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.signInPath+"?error="+url.QueryEscape(reason), http.StatusFound)
}

// destinationURL constrains the post-verification redirect to a local path.
// Anything absent, absolute or protocol-relative lands on the report area.
func (h *AuthHandler) destinationURL(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		from = h.reportPath
	}

	separator := "?"
	if strings.Contains(from, "?") {
		separator = "&"
	}
	return from + separator + "auth=callback"
}
