package repositories

import (
	"context"

	"github.com/gatehouse-labs/gatehouse/internal/database"
	"github.com/gatehouse-labs/gatehouse/internal/models"
	"github.com/jackc/pgx/v5"
)

// WorkflowRepository couples a directory write with its approval-trail row in
// a single transaction, so a user can never exist without the matching audit
// record.
type WorkflowRepository struct {
	db        *database.DB
	users     *UserRepository
	approvals *ApprovalRepository
}

func NewWorkflowRepository(db *database.DB, users *UserRepository, approvals *ApprovalRepository) *WorkflowRepository {
	return &WorkflowRepository{
		db:        db,
		users:     users,
		approvals: approvals,
	}
}

// CreateUserWithPendingApproval inserts a new user and the opening PENDING
// row of their decision trail atomically.
func (r *WorkflowRepository) CreateUserWithPendingApproval(ctx context.Context, user *models.User) (*models.User, error) {
	var created *models.User

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = r.users.WithTx(tx).Create(ctx, user)
		if err != nil {
			return err
		}

		_, err = r.approvals.WithTx(tx).Create(ctx, &models.RegistrationApproval{
			UserID: created.ID,
			Status: models.StatusPending,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateStatusWithApproval overwrites the user's registration status and
// appends the decision row in the same transaction.
func (r *WorkflowRepository) UpdateStatusWithApproval(ctx context.Context, userID string, status models.RegistrationStatus, approvedBy string) (*models.User, error) {
	var updated *models.User

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = r.users.WithTx(tx).UpdateStatus(ctx, userID, status)
		if err != nil {
			return err
		}

		_, err = r.approvals.WithTx(tx).Create(ctx, &models.RegistrationApproval{
			UserID:     userID,
			Status:     status,
			ApprovedBy: &approvedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
