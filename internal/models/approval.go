package models

import "time"

// RegistrationApproval is an append-only audit record of one registration
// status decision. The row created at registration time has a nil
// ApprovedBy; every administrator decision appends a new row. Rows are
// never updated or deleted except by user-deletion cascade.
type RegistrationApproval struct {
	ID         string
	UserID     string
	Status     RegistrationStatus
	ApprovedBy *string // acting admin's user id, nil for the registration row
	CreatedAt  time.Time
}
