package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/gatehouse-labs/gatehouse/internal/database"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApprovalRepository persists the append-only registration decision trail.
// There is deliberately no update or single-row delete; history only grows,
// and disappears as a whole when the owning user is deleted.
type ApprovalRepository struct {
	q database.Querier
}

func NewApprovalRepository(db *database.DB) *ApprovalRepository {
	return &ApprovalRepository{q: db.Pool}
}

// WithTx returns a copy of the repository whose statements run on tx.
func (r *ApprovalRepository) WithTx(tx pgx.Tx) *ApprovalRepository {
	return &ApprovalRepository{q: tx}
}

func (r *ApprovalRepository) Create(ctx context.Context, approval *models.RegistrationApproval) (*models.RegistrationApproval, error) {
	approval.ID = uuid.New().String()
	approval.CreatedAt = time.Now()

	query := `
		INSERT INTO registration_approvals (id, user_id, status, approved_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, status, approved_by, created_at
	`

	var created models.RegistrationApproval
	err := r.q.QueryRow(ctx, query,
		approval.ID, approval.UserID, approval.Status, approval.ApprovedBy, approval.CreatedAt,
	).Scan(&created.ID, &created.UserID, &created.Status, &created.ApprovedBy, &created.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &created, nil
}

// ListByUserID returns a user's decision history, oldest first.
func (r *ApprovalRepository) ListByUserID(ctx context.Context, userID string) ([]*models.RegistrationApproval, error) {
	query := `
		SELECT id, user_id, status, approved_by, created_at
		FROM registration_approvals
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals: %w", err)
	}
	defer rows.Close()

	approvals := make([]*models.RegistrationApproval, 0)
	for rows.Next() {
		var a models.RegistrationApproval
		if err := rows.Scan(&a.ID, &a.UserID, &a.Status, &a.ApprovedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return approvals, nil
}
