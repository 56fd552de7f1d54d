package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/gatehouse-labs/gatehouse/pkg/logger"
)

// TokenCodec defines the token operations the sign-in flow needs
type TokenCodec interface {
	SignSession(userID, email string, role models.Role) (string, error)
	SignMagicLink(userID, email string) (string, error)
	Verify(tokenString string) (*models.TokenClaims, error)
}

// SignInResult is the outcome of a sign-in attempt. Exactly one of Token and
// MagicLinkSent is meaningful: the password path returns a live session token
// immediately, the magic-link path only confirms the email was sent.
type SignInResult struct {
	User          *models.User
	Token         string
	ExpiresAt     time.Time
	MagicLinkSent bool
}

// AuthService handles sign-in, magic-link verification and logout
type AuthService struct {
	users           UserRepository
	sessions        SessionRepository
	tokens          TokenCodec
	notifier        Notifier
	sessionExpiry   time.Duration
	magicLinkExpiry time.Duration
	logger          *slog.Logger
	audit           *logger.AuditLogger
}

func NewAuthService(users UserRepository, sessions SessionRepository, tokens TokenCodec, notifier Notifier, sessionExpiry, magicLinkExpiry time.Duration, log *slog.Logger, audit *logger.AuditLogger) *AuthService {
	return &AuthService{
		users:           users,
		sessions:        sessions,
		tokens:          tokens,
		notifier:        notifier,
		sessionExpiry:   sessionExpiry,
		magicLinkExpiry: magicLinkExpiry,
		logger:          log,
		audit:           audit,
	}
}

// SignIn starts a sign-in. Accounts with a password hash (the provisioned
// admin) authenticate with it directly; everyone else gets a short-lived
// magic link by email. Banned and not-yet-approved accounts are rejected
// before either path runs.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Indistinguishable from a wrong password on purpose.
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user for sign-in", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.checkSignInAllowed(user); err != nil {
		return nil, err
	}

	if user.PasswordHash != "" {
		return s.signInWithPassword(ctx, user, password)
	}

	return s.signInWithMagicLink(ctx, user)
}

func (s *AuthService) checkSignInAllowed(user *models.User) error {
	if user.Banned {
		s.audit.Log(logger.AuditEvent{
			EventType: logger.EventSignIn,
			TargetID:  user.ID,
			Success:   false,
			Reason:    "banned",
		})
		return models.ErrBanned
	}

	if user.RegistrationStatus != models.StatusApproved {
		s.audit.Log(logger.AuditEvent{
			EventType: logger.EventSignIn,
			TargetID:  user.ID,
			Success:   false,
			Reason:    string(user.RegistrationStatus),
		})
		return models.ErrNotApproved
	}

	return nil
}

func (s *AuthService) signInWithPassword(ctx context.Context, user *models.User, password string) (*SignInResult, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit.Log(logger.AuditEvent{
			EventType: logger.EventSignIn,
			TargetID:  user.ID,
			Success:   false,
			Reason:    "bad_password",
		})
		return nil, models.ErrUnauthorized
	}

	return s.establishSession(ctx, user)
}

func (s *AuthService) signInWithMagicLink(ctx context.Context, user *models.User) (*SignInResult, error) {
	token, err := s.tokens.SignMagicLink(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to sign magic link token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.magicLinkExpiry)
	if err := s.notifier.SendMagicLink(ctx, user.Email, token, expiresAt); err != nil {
		s.logger.Error("failed to send magic link",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("magic link sent",
		slog.String("user_id", user.ID),
		slog.String("email", logger.SanitizedEmail(user.Email)))

	return &SignInResult{User: user, MagicLinkSent: true}, nil
}

// VerifyMagicLink exchanges a magic-link token for a session. All of the
// user's existing sessions are replaced by the new one, so each completed
// sign-in leaves exactly one live session.
func (s *AuthService) VerifyMagicLink(ctx context.Context, tokenString string) (*SignInResult, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Purpose != models.TokenPurposeMagicLink {
		return nil, models.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		s.logger.Error("failed to load user for magic link",
			slog.String("user_id", claims.UserID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// The account may have been banned or re-decided between the link being
	// sent and clicked.
	if err := s.checkSignInAllowed(user); err != nil {
		return nil, err
	}

	return s.establishSession(ctx, user)
}

func (s *AuthService) establishSession(ctx context.Context, user *models.User) (*SignInResult, error) {
	token, err := s.tokens.SignSession(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to sign session token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.sessions.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.Error("failed to clear previous sessions",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.sessionExpiry)
	if _, err := s.sessions.Create(ctx, &models.Session{
		SessionToken: token,
		UserID:       user.ID,
		Expires:      expiresAt,
	}); err != nil {
		s.logger.Error("failed to create session",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// The session is already live; a missed timestamp is not worth
		// failing the sign-in over.
		s.logger.Error("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}

	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventSignIn,
		TargetID:  user.ID,
		Success:   true,
	})

	return &SignInResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the presented session token. Revoking a token that has no
// session row is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.sessions.DeleteByToken(ctx, token)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to delete session", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.Log(logger.AuditEvent{
		EventType: logger.EventSignOut,
		Success:   true,
	})

	return nil
}
