package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	pkghttp "github.com/gatehouse-labs/gatehouse/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// IdentityContextKey is the key for the resolved identity in context
	IdentityContextKey contextKey = "identity"
)

// SessionLookup is the slice of the session store the guard needs.
type SessionLookup interface {
	GetLiveByToken(ctx context.Context, token string) (*models.Session, error)
}

// UserLookup is the slice of the user directory the guard needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ExtractToken is the single token-extraction routine used by every
// protected endpoint: Authorization header wins when both it and the
// cookie are present. Returns "" when neither carries a token.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}

	if token, err := GetAuthCookie(r); err == nil {
		return token
	}

	return ""
}

// Authenticate verifies the bearer token cryptographically and injects the
// claimed identity into the request context. Session-purpose tokens only;
// a magic-link token cannot be used as a session credential.
func Authenticate(tc *TokenCodec) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				pkghttp.WriteUnauthorized(w, "Missing credentials")
				return
			}

			claims, err := tc.Verify(token)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			if claims.Purpose != models.TokenPurposeSession {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			identity := &models.Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
				Token:  token,
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession enforces server-side revocability on top of Authenticate:
// the exact presented token must still have a live session row. A deleted
// or expired row rejects the request even though the token itself still
// verifies.
func RequireSession(sessions SessionLookup) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r)
			if identity == nil {
				pkghttp.WriteUnauthorized(w, "Missing credentials")
				return
			}

			session, err := sessions.GetLiveByToken(r.Context(), identity.Token)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Session expired or revoked")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			// The store already filters on expiry; re-check here so a stale
			// row returned by a lookup implementation cannot authenticate.
			if session == nil || !session.Live(time.Now()) {
				pkghttp.WriteUnauthorized(w, "Session expired or revoked")
				return
			}

			// The session row is authoritative for who is acting.
			identity.UserID = session.UserID

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin loads the acting user and requires the ADMIN role. Must run
// after Authenticate. The role comes from the directory, not the token, so
// a demotion takes effect on the next request.
func RequireAdmin(users UserLookup) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r)
			if identity == nil {
				pkghttp.WriteUnauthorized(w, "Missing credentials")
				return
			}

			user, err := users.GetByID(r.Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Unknown user")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if user.Role != models.RoleAdmin {
				pkghttp.WriteForbidden(w, "Administrator access required")
				return
			}

			identity.Role = user.Role
			identity.Email = user.Email

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext extracts the resolved identity from request context
func IdentityFromContext(r *http.Request) *models.Identity {
	identity, ok := r.Context().Value(IdentityContextKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
