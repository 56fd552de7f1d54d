package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/database"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	q database.Querier
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// WithTx returns a copy of the repository whose statements run on tx.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, email, name, title, phone, role, registration_status, password_hash, banned, banned_at, banned_reason, created_at, last_login_at`

// rowScanner lets the same scan helper serve QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash, bannedReason *string
	var bannedAt, lastLoginAt *time.Time

	err := scanner.Scan(
		&user.ID, &user.Email, &user.Name, &user.Title, &user.Phone,
		&user.Role, &user.RegistrationStatus, &passwordHash,
		&user.Banned, &bannedAt, &bannedReason,
		&user.CreatedAt, &lastLoginAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	user.BannedAt = bannedAt
	user.BannedReason = bannedReason
	user.LastLoginAt = lastLoginAt

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.q.QueryRow(ctx, query, id))
}

// GetByEmail compares case-insensitively; emails are stored lowercased but
// lookups tolerate mixed-case input.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`

	return scanUserRow(r.q.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

// Create inserts a new user. The unique index on lower(email) is the
// authoritative duplicate check; a violation surfaces as ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now()

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.RegistrationStatus == "" {
		user.RegistrationStatus = models.StatusPending
	}

	query := `
		INSERT INTO users (id, email, name, title, phone, role, registration_status, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	return scanUserRow(r.q.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Title, user.Phone,
		user.Role, user.RegistrationStatus, passwordHash, user.CreatedAt,
	))
}

// UpdateStatus sets the registration status and returns the updated row.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.User, error) {
	query := `
		UPDATE users SET registration_status = $1
		WHERE id = $2
		RETURNING ` + userColumns

	return scanUserRow(r.q.QueryRow(ctx, query, status, id))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetBanned flips the ban flag. reason is recorded on ban and cleared on
// unban along with the timestamp.
func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool, reason *string) (*models.User, error) {
	var bannedAt *time.Time
	if banned {
		now := time.Now()
		bannedAt = &now
	} else {
		reason = nil
	}

	query := `
		UPDATE users SET banned = $1, banned_at = $2, banned_reason = $3
		WHERE id = $4
		RETURNING ` + userColumns

	return scanUserRow(r.q.QueryRow(ctx, query, banned, bannedAt, reason, id))
}

// Delete removes the user row. Sessions and approval history go with it
// via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
