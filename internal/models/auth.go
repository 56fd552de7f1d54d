package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload of every token this service signs. Subject is
// the user id; Purpose distinguishes session tokens from short-lived
// magic-link tokens so one cannot be replayed as the other.
type TokenClaims struct {
	Purpose string `json:"purpose"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

const (
	TokenPurposeSession   = "session"
	TokenPurposeMagicLink = "magic-link"
)

// Identity is the resolved acting identity handed to protected operations
// by the authorization guard.
type Identity struct {
	UserID string
	Email  string
	Role   Role
	Token  string // serialized bearer token the identity was resolved from
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
