package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec signs and verifies the bearer tokens this service issues.
// Tokens are opaque strings to every other component; nothing outside this
// type parses their structure.
type TokenCodec struct {
	secret          string
	sessionExpiry   time.Duration
	magicLinkExpiry time.Duration
}

func NewTokenCodec(secret string, sessionExpiry, magicLinkExpiry time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:          secret,
		sessionExpiry:   sessionExpiry,
		magicLinkExpiry: magicLinkExpiry,
	}
}

// SignSession creates a session-purpose token for the given subject.
func (tc *TokenCodec) SignSession(userID, email string, role models.Role) (string, error) {
	return tc.sign(models.TokenPurposeSession, userID, email, tc.sessionExpiry)
}

// SignMagicLink creates a short-lived sign-in link token.
func (tc *TokenCodec) SignMagicLink(userID, email string) (string, error) {
	return tc.sign(models.TokenPurposeMagicLink, userID, email, tc.magicLinkExpiry)
}

func (tc *TokenCodec) sign(purpose, userID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Purpose: purpose,
		UserID:  userID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tc.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify parses and validates a token and returns its claims. Expired
// tokens fail with ErrTokenExpired, everything else malformed or
// mis-signed with ErrInvalidToken; callers that don't care about the
// distinction treat both as unauthenticated.
func (tc *TokenCodec) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tc.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrInvalidToken
	}

	if !token.Valid {
		return nil, models.ErrInvalidToken
	}

	if claims.Purpose == "" || claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}
