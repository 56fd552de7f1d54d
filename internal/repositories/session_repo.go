package repositories

import (
	"context"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/database"
	"github.com/gatehouse-labs/gatehouse/internal/models"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	query := `
		INSERT INTO sessions (session_token, user_id, expires)
		VALUES ($1, $2, $3)
		RETURNING session_token, user_id, expires
	`

	var created models.Session
	err := r.db.Pool.QueryRow(ctx, query,
		session.SessionToken, session.UserID, session.Expires,
	).Scan(&created.SessionToken, &created.UserID, &created.Expires)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &created, nil
}

// GetLiveByToken returns the session for the exact serialized token, only
// while it has not expired. An expired or deleted row is ErrNotFound: the
// caller treats both as a revoked login regardless of the token's own
// validity.
func (r *SessionRepository) GetLiveByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT session_token, user_id, expires
		FROM sessions
		WHERE session_token = $1 AND expires > now()
	`

	var session models.Session
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&session.SessionToken, &session.UserID, &session.Expires,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &session, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE session_token = $1`, token)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteByUserID revokes every session a user holds. Used at ban time and
// before issuing a fresh session on magic-link sign-in.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes sessions past their expiry. Called by the
// background sweeper; validity checks never depend on it.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires <= $1`, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
