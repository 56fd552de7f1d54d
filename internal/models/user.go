package models

import (
	"time"
)

// Role identifies a user's privilege level. Only the two values below are
// ever stored; anything else fails Valid().
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// RegistrationStatus is the applicant-approval state of an account.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "PENDING"
	StatusApproved RegistrationStatus = "APPROVED"
	StatusDenied   RegistrationStatus = "DENIED"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Decidable reports whether s is a value an administrator may set through
// the decision endpoint. PENDING is the initial state only.
func (s RegistrationStatus) Decidable() bool {
	return s == StatusApproved || s == StatusDenied
}

type User struct {
	ID                 string
	Email              string // stored lowercased, unique
	Name               string
	Title              string
	Phone              string
	Role               Role
	RegistrationStatus RegistrationStatus
	PasswordHash       string // only set for the bootstrapped admin account
	Banned             bool
	BannedAt           *time.Time
	BannedReason       *string
	CreatedAt          time.Time
	LastLoginAt        *time.Time
}
